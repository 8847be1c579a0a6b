package api

// Response and request bodies for the control API. Every response carries
// a success flag; failures use errorResponse with an error string and a
// non-200 status.

// MessageResponse acknowledges a mutation.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PathResponse returns the source or destination directory.
type PathResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
}

// PatternResponse returns the naming pattern.
type PatternResponse struct {
	Success bool   `json:"success"`
	Pattern string `json:"pattern"`
}

// StatusResponse summarizes the running session.
type StatusResponse struct {
	Success           bool   `json:"success"`
	IsTracking        bool   `json:"is_tracking"`
	TrackedFilesCount int    `json:"tracked_files_count"`
	SourcePath        string `json:"source_path"`
	DestinationPath   string `json:"destination_path"`
	NamePattern       string `json:"name_pattern"`
}

// TrackedFileInfo is one row of the tracked listing with its planned name
// and conflict state ("normal", "duplicate" or "exists").
type TrackedFileInfo struct {
	OriginalPath string `json:"original_path"`
	OriginalName string `json:"original_name"`
	NewName      string `json:"new_name"`
	State        string `json:"state"`
}

// TrackingResponse returns the newest tracked files.
type TrackingResponse struct {
	Success       bool              `json:"success"`
	Files         []TrackedFileInfo `json:"files"`
	TotalCount    int               `json:"total_count"`
	ReturnedCount int               `json:"returned_count"`
}

// CopyResponse reports a completed copy pass.
type CopyResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Copied   int    `json:"copied"`
	Ignored  int    `json:"ignored"`
	Vanished int    `json:"vanished"`
	LastFile string `json:"last_file,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// pathRequest uses a pointer so a missing key is distinguishable from an
// explicitly empty path.
type pathRequest struct {
	Path *string `json:"path"`
}

type patternRequest struct {
	Pattern *string `json:"pattern"`
}

type copyRenameRequest struct {
	Policy           string `json:"policy"`
	AllowMissingTags bool   `json:"allow_missing_tags"`
}
