package constants

import "os"

// Version is the toolkit release, reported by the version command and
// the health endpoint.
const Version = "0.3.0"

// RoxMagic is the file signature of the native binary format ("ROX\0").
var RoxMagic = [4]byte{0x52, 0x4F, 0x58, 0x00}

// RoxVersion is the current native format version.
const RoxVersion uint8 = 1

// MaxFileSize applies to every chart file we decode or encode.
const MaxFileSize = 100 * 1024 * 1024

// ZstdLevel is the compression level for .rox payloads.
const ZstdLevel = 3

const PreviewDurationUs int64 = 15_000_000

const MaxKeyCount = 18

func GetServerAddr() string {
	addr := os.Getenv("ROX_SERVER_ADDR")
	if addr != "" {
		return addr
	}
	return ":8080"
}

func GetChartBucket() string {
	bucket := os.Getenv("ROX_CHART_BUCKET")
	if bucket != "" {
		return bucket
	}

	panic("ROX_CHART_BUCKET environment variable is not set!")
}

func GetRegistryTable() string {
	table := os.Getenv("ROX_REGISTRY_TABLE")
	if table != "" {
		return table
	}
	return "rox-charts"
}

func GetAwsRegion() string {
	region := os.Getenv("AWS_REGION")
	if region != "" {
		return region
	}
	return "us-east-1"
}

// GetAwsEndpoint returns a local endpoint override, empty for real AWS.
func GetAwsEndpoint() string {
	return os.Getenv("ROX_AWS_ENDPOINT")
}
