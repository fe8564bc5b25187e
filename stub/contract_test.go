package stub

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/predict-client/domain/inference"
)

// These run the real client against the stand-in to keep both sides of the
// HTTP contract in step.

func stage(t *testing.T, name, content string) inference.Upload {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return inference.Upload{Name: name, Path: p}
}

func newContractClient(t *testing.T) *inference.Client {
	t.Helper()
	srv := httptest.NewServer(newTestServer(Options{}).Handler())
	t.Cleanup(srv.Close)
	return inference.NewClient(inference.Options{BaseURL: srv.URL}, nil)
}

func TestContract_Predict(t *testing.T) {
	c := newContractClient(t)

	pred, err := c.Predict(context.Background(), stage(t, "a.txt", coverageTable(constant(1.4))))

	require.NoError(t, err)
	var label string
	require.NoError(t, json.Unmarshal(pred, &label))
	assert.Equal(t, LabelPositive, label)
}

func TestContract_ProcessMultiple(t *testing.T) {
	c := newContractClient(t)
	ups := []inference.Upload{
		stage(t, "one.txt", coverageTable(constant(1.1))),
		stage(t, "two.txt", coverageTable(constant(0.9))),
	}

	recs, err := c.ProcessMultiple(context.Background(), ups)

	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "one.txt", recs[0].Filename)
	assert.Equal(t, `"Negative"`, string(recs[1].Prediction))
	for _, r := range recs {
		require.True(t, r.HasHeatmap())
		_, err := png.DecodeConfig(bytes.NewReader(r.Heatmap))
		assert.NoError(t, err)
	}
}

func TestContract_GenerateHeatmap(t *testing.T) {
	c := newContractClient(t)

	img, err := c.GenerateHeatmap(context.Background(), stage(t, "a.txt", coverageTable(constant(1))))

	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(img))
	assert.NoError(t, err)
}

func TestContract_PredictFeature(t *testing.T) {
	c := newContractClient(t)

	pred, err := c.PredictFeature(context.Background(), 3)

	require.NoError(t, err)
	assert.JSONEq(t, `1`, string(pred))
}

func TestContract_ErrorsCarryDetail(t *testing.T) {
	c := newContractClient(t)

	_, err := c.ProcessMultiple(context.Background(), []inference.Upload{stage(t, "photo.jpg", "x")})

	var rerr *inference.RequestError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 500, rerr.Status)
	assert.Equal(t, "invalid file format: photo.jpg", inference.Message(err))
}
