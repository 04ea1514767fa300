// Package registry persists published chart records in DynamoDB, keyed
// by the chart id the bucket upload minted.
package registry

import (
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/pkg/errors"

	"github.com/openrhythm/rox/constants"
)

// MaxBatchGet is the largest id list GetCharts accepts, matching the
// DynamoDB BatchGetItem limit.
const MaxBatchGet = 100

// ChartRecord is one row of the chart registry.
type ChartRecord struct {
	ID       string
	Title    string
	Artist   string
	Creator  string
	KeyCount uint8
	Hash     string
	Key      string
}

type Registry struct {
	table  string
	client *dynamodb.DynamoDB
}

// New connects to the registry table named by the environment.
func New() (*Registry, error) {
	config := aws.Config{Region: aws.String(constants.GetAwsRegion())}
	if endpoint := constants.GetAwsEndpoint(); endpoint != "" {
		config.Endpoint = aws.String(endpoint)
	}
	sess, err := session.NewSession(&config)
	if err != nil {
		return nil, errors.Wrap(err, "could not create an AWS session")
	}
	return &Registry{
		table:  constants.GetRegistryTable(),
		client: dynamodb.New(sess),
	}, nil
}

// PutChart writes or overwrites one record.
func (r *Registry) PutChart(rec ChartRecord) error {
	_, err := r.client.PutItem(&dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item: map[string]*dynamodb.AttributeValue{
			"PK":       {S: aws.String(rec.ID)},
			"Title":    {S: aws.String(rec.Title)},
			"Artist":   {S: aws.String(rec.Artist)},
			"Creator":  {S: aws.String(rec.Creator)},
			"KeyCount": {N: aws.String(strconv.Itoa(int(rec.KeyCount)))},
			"Hash":     {S: aws.String(rec.Hash)},
			"Key":      {S: aws.String(rec.Key)},
		},
	})
	return errors.Wrapf(err, "could not register chart %v", rec.ID)
}

// GetCharts fetches up to MaxBatchGet records by id. Ids without a row
// are simply absent from the result.
func (r *Registry) GetCharts(ids []string) (map[string]ChartRecord, error) {
	res := make(map[string]ChartRecord)
	if len(ids) == 0 {
		return res, nil
	}
	if len(ids) > MaxBatchGet {
		return nil, errors.Errorf("cannot fetch more than %d charts at once", MaxBatchGet)
	}

	var keys []map[string]*dynamodb.AttributeValue
	for _, id := range ids {
		keys = append(keys, map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(id)},
		})
	}

	out, err := r.client.BatchGetItem(&dynamodb.BatchGetItemInput{
		RequestItems: map[string]*dynamodb.KeysAndAttributes{
			r.table: {Keys: keys},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not fetch chart records")
	}

	for _, item := range out.Responses[r.table] {
		rec := recordFromItem(item)
		res[rec.ID] = rec
	}
	return res, nil
}

func recordFromItem(item map[string]*dynamodb.AttributeValue) ChartRecord {
	rec := ChartRecord{
		ID:      stringAttr(item, "PK"),
		Title:   stringAttr(item, "Title"),
		Artist:  stringAttr(item, "Artist"),
		Creator: stringAttr(item, "Creator"),
		Hash:    stringAttr(item, "Hash"),
		Key:     stringAttr(item, "Key"),
	}
	if v := item["KeyCount"]; v != nil && v.N != nil {
		kc, _ := strconv.ParseUint(*v.N, 10, 8)
		rec.KeyCount = uint8(kc)
	}
	return rec
}

func stringAttr(item map[string]*dynamodb.AttributeValue, name string) string {
	if v := item[name]; v != nil && v.S != nil {
		return *v.S
	}
	return ""
}
