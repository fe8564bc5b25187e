package inference

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Mode selects which backend workflow a submission uses.
type Mode string

const (
	// ModeSingle uploads one file to /predict.
	ModeSingle Mode = "single"
	// ModeMulti uploads every staged file to /process-multiple-files in one call.
	ModeMulti Mode = "multi"
	// ModeDual calls /predict and then /generate-heatmap for the same file.
	ModeDual Mode = "dual"
	// ModeFeature posts a JSON {feature} body to the legacy /predict/ route.
	ModeFeature Mode = "feature"
)

// Modes lists the supported modes in display order.
var Modes = []Mode{ModeMulti, ModeSingle, ModeDual, ModeFeature}

// ParseMode normalizes s and reports whether it names a known mode.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, true
		}
	}
	return "", false
}

// MultiFile reports whether the mode stages more than one file.
func (m Mode) MultiFile() bool { return m == ModeMulti }

// NeedsFiles reports whether the mode uploads files at all.
func (m Mode) NeedsFiles() bool { return m != ModeFeature }

func (m Mode) String() string { return string(m) }

// Upload is one local file part of a multipart request.
type Upload struct {
	Name string // display and multipart filename
	Path string // local path read when the request body is built
}

// ResultRecord is one per-file outcome reported by the backend.
// Filename is backend-reported and does not align with the uploaded set by index.
type ResultRecord struct {
	Filename   string
	Prediction json.RawMessage
	Heatmap    []byte // PNG bytes, nil when the backend sent none
}

// HasHeatmap reports whether the record carries an image.
func (r ResultRecord) HasHeatmap() bool { return len(r.Heatmap) > 0 }

// PredictionText renders the prediction as indented JSON for display.
func (r ResultRecord) PredictionText() string {
	if len(r.Prediction) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.Prediction, "", "  "); err != nil {
		return string(r.Prediction)
	}
	return buf.String()
}

// Clone returns a deep copy so callers never share backing arrays.
func (r ResultRecord) Clone() ResultRecord {
	out := ResultRecord{Filename: r.Filename}
	if r.Prediction != nil {
		out.Prediction = append(json.RawMessage(nil), r.Prediction...)
	}
	if r.Heatmap != nil {
		out.Heatmap = append([]byte(nil), r.Heatmap...)
	}
	return out
}

// CloneResults deep-copies a result set.
func CloneResults(in []ResultRecord) []ResultRecord {
	if in == nil {
		return nil
	}
	out := make([]ResultRecord, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

// wire formats

type predictResponse struct {
	Prediction json.RawMessage `json:"prediction"`
}

type multiResponse struct {
	Results *[]multiResult `json:"results"`
}

type multiResult struct {
	Filename   string          `json:"filename"`
	Prediction json.RawMessage `json:"prediction"`
	Heatmap    string          `json:"heatmap"`
}

type featureRequest struct {
	Feature float64 `json:"feature"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}
