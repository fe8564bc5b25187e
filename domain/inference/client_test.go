package inference

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0xf8, 0xcf, 0xc0, 0xf0,
	0x1f, 0x00, 0x05, 0x00, 0x01, 0xff, 0x89, 0x99, 0x3d, 0x1d, 0x00, 0x00,
	0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func writeTemp(t *testing.T, name, content string) Upload {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return Upload{Name: name, Path: p}
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL}, nil)
}

func TestPredict_SendsFileField(t *testing.T) {
	up := writeTemp(t, "a.txt", "chrom\tstart\tend\tcorrected_cov\n")
	var gotName, gotBody, gotID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathPredict, r.URL.Path)
		gotID = r.Header.Get(requestIDHeader)
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotName, gotBody = hdr.Filename, string(b)
		_, _ = io.WriteString(w, `{"prediction": 0.75}`)
	})

	pred, err := c.Predict(context.Background(), up)

	require.NoError(t, err)
	assert.JSONEq(t, `0.75`, string(pred))
	assert.Equal(t, "a.txt", gotName)
	assert.Contains(t, gotBody, "corrected_cov")
	assert.NotEmpty(t, gotID)
}

func TestProcessMultiple_RoundTrip(t *testing.T) {
	a := writeTemp(t, "a.txt", "1")
	b := writeTemp(t, "b.txt", "2")
	encoded := base64.StdEncoding.EncodeToString(tinyPNG)
	var parts []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathProcessMultiple, r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		for _, fh := range r.MultipartForm.File["files"] {
			parts = append(parts, fh.Filename)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"filename": "a.txt", "prediction": 1, "heatmap": encoded}},
		})
	})

	res, err := c.ProcessMultiple(context.Background(), []Upload{a, b})

	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, parts)
	require.Len(t, res, 1, "backend dropped b.txt; the client must not invent a record")
	assert.Equal(t, "a.txt", res[0].Filename)
	assert.JSONEq(t, `1`, string(res[0].Prediction))
	assert.Equal(t, tinyPNG, res[0].Heatmap)
}

func TestProcessMultiple_PreservesBackendOrder(t *testing.T) {
	a := writeTemp(t, "a.txt", "1")
	b := writeTemp(t, "b.txt", "2")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"results":[{"filename":"b.txt","prediction":{"label":"x"}},{"filename":"a.txt","prediction":2,"heatmap":""}]}`)
	})

	res, err := c.ProcessMultiple(context.Background(), []Upload{a, b})

	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "b.txt", res[0].Filename)
	assert.False(t, res[0].HasHeatmap())
	assert.Equal(t, "a.txt", res[1].Filename)
}

func TestProcessMultiple_DataURLHeatmap(t *testing.T) {
	a := writeTemp(t, "a.txt", "1")
	encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString(tinyPNG)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"filename": "a.txt", "prediction": 3, "heatmap": encoded}},
		})
	})

	res, err := c.ProcessMultiple(context.Background(), []Upload{a})

	require.NoError(t, err)
	assert.Equal(t, tinyPNG, res[0].Heatmap)
}

func TestProcessMultiple_ShapeMismatchIsTransportError(t *testing.T) {
	a := writeTemp(t, "a.txt", "1")
	cases := map[string]string{
		"missing results":   `{"foo": []}`,
		"results not array": `{"results": "nope"}`,
		"bad base64":        `{"results":[{"filename":"a.txt","prediction":1,"heatmap":"***"}]}`,
		"no prediction":     `{"results":[{"filename":"a.txt"}]}`,
		"not json":          `<html>oops</html>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			})
			_, err := c.ProcessMultiple(context.Background(), []Upload{a})
			require.Error(t, err)
			assert.Equal(t, KindTransport, Classify(err))
		})
	}
}

func TestPost_ErrorDetail(t *testing.T) {
	up := writeTemp(t, "a.txt", "1")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"detail":"model unavailable"}`)
	})

	_, err := c.Predict(context.Background(), up)

	require.Error(t, err)
	assert.Equal(t, KindRequest, Classify(err))
	assert.Equal(t, "model unavailable", Message(err))
}

func TestPost_UnparseableErrorBodyFallsBack(t *testing.T) {
	up := writeTemp(t, "a.txt", "1")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `Internal Server Error`)
	})

	_, err := c.ProcessMultiple(context.Background(), []Upload{up})

	require.Error(t, err)
	assert.Equal(t, KindRequest, Classify(err))
	assert.Equal(t, GenericRequestMessage, Message(err))
}

func TestPost_NonOKWithValidPayloadIsStillError(t *testing.T) {
	up := writeTemp(t, "a.txt", "1")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = io.WriteString(w, `{"prediction": 1}`)
	})

	_, err := c.Predict(context.Background(), up)

	require.Error(t, err)
	var rerr *RequestError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, http.StatusPaymentRequired, rerr.Status)
	assert.Equal(t, GenericRequestMessage, rerr.Detail)
}

func TestPost_TransportFailure(t *testing.T) {
	up := writeTemp(t, "a.txt", "1")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	c := NewClient(Options{BaseURL: url}, nil)

	_, err := c.Predict(context.Background(), up)

	require.Error(t, err)
	assert.Equal(t, KindTransport, Classify(err))
	assert.NotEmpty(t, Message(err))
}

func TestPost_ResponseTooLarge(t *testing.T) {
	up := writeTemp(t, "a.txt", "1")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"prediction": "`+strings.Repeat("x", 64)+`"}`)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(Options{BaseURL: srv.URL, MaxResponseBytes: 16}, nil)

	_, err := c.Predict(context.Background(), up)

	assert.Equal(t, KindTransport, Classify(err))
}

func TestPredict_MissingFileIsTransportError(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { calls++ })

	_, err := c.Predict(context.Background(), Upload{Name: "gone.txt", Path: filepath.Join(t.TempDir(), "gone.txt")})

	assert.Equal(t, KindTransport, Classify(err))
	assert.Zero(t, calls)
}

func TestGenerateHeatmap(t *testing.T) {
	up := writeTemp(t, "a.txt", "1")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathGenerateHeatmap, r.URL.Path)
		_, _, err := r.FormFile("file")
		assert.NoError(t, err)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(tinyPNG)
	})

	img, err := c.GenerateHeatmap(context.Background(), up)

	require.NoError(t, err)
	assert.Equal(t, tinyPNG, img)
}

func TestGenerateHeatmap_RejectsNonImage(t *testing.T) {
	up := writeTemp(t, "a.txt", "1")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"prediction": 1}`)
	})

	_, err := c.GenerateHeatmap(context.Background(), up)

	assert.ErrorIs(t, err, ErrShape)
	assert.Equal(t, KindTransport, Classify(err))
}

func TestPredictFeature_SendsJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathPredictFeature, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"feature": 2.5}`, string(b))
		_, _ = io.WriteString(w, `{"prediction": 5}`)
	})

	pred, err := c.PredictFeature(context.Background(), 2.5)

	require.NoError(t, err)
	assert.JSONEq(t, `5`, string(pred))
}

func TestSetBaseURL(t *testing.T) {
	c := NewClient(Options{}, nil)
	assert.Equal(t, defaultBaseURL, c.BaseURL())
	c.SetBaseURL("http://example.test:9000/")
	assert.Equal(t, "http://example.test:9000", c.BaseURL())
	c.SetBaseURL("  ")
	assert.Equal(t, defaultBaseURL, c.BaseURL())
}

func TestSetMaxResponseBytes(t *testing.T) {
	up := writeTemp(t, "a.txt", "1")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"prediction": 12345}`)
	})

	c.SetMaxResponseBytes(8)
	_, err := c.Predict(context.Background(), up)
	assert.Equal(t, KindTransport, Classify(err))

	c.SetMaxResponseBytes(0)
	pred, err := c.Predict(context.Background(), up)
	require.NoError(t, err)
	assert.JSONEq(t, `12345`, string(pred))
}
