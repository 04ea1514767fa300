package model

type AnalyzeResponse struct {
	RequestID string         `json:"request_id"`
	Chart     ChartSummary   `json:"chart"`
	Analysis  AnalysisResult `json:"analysis"`
}

type ChartSummary struct {
	Title          string  `json:"title"`
	Artist         string  `json:"artist"`
	Creator        string  `json:"creator"`
	DifficultyName string  `json:"difficulty_name"`
	KeyCount       uint8   `json:"key_count"`
	NoteCount      int     `json:"note_count"`
	DurationUs     int64   `json:"duration_us"`
	Nps            float64 `json:"nps"`
	BpmMin         float64 `json:"bpm_min"`
	BpmMax         float64 `json:"bpm_max"`
	BpmMode        float64 `json:"bpm_mode"`
	ShortHash      string  `json:"short_hash"`
}

type ChartRecordResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Creator  string `json:"creator"`
	KeyCount uint8  `json:"key_count"`
	Hash     string `json:"hash"`
	Key      string `json:"key"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
