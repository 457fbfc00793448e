package iforest

import (
	"bytes"
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/syscallguard/pkg/detectors"
	"github.com/hed1ad/syscallguard/pkg/errors"
	"github.com/hed1ad/syscallguard/pkg/features"
)

func TestNewIsolationForest(t *testing.T) {
	tests := []struct {
		name       string
		opts       []Option
		wantNTrees int
		wantDepth  int
	}{
		{
			name:       "default configuration",
			opts:       nil,
			wantNTrees: 10,
			wantDepth:  10,
		},
		{
			name:       "custom trees",
			opts:       []Option{WithTrees(50)},
			wantNTrees: 50,
			wantDepth:  10,
		},
		{
			name:       "multiple options",
			opts:       []Option{WithTrees(200), WithMaxDepth(4), WithContamination(0.05), WithSeed(123)},
			wantNTrees: 200,
			wantDepth:  4,
		},
		{
			name:       "config then override",
			opts:       []Option{WithConfig(detectors.Config{NumTrees: 3, MaxDepth: 2}), WithTrees(7)},
			wantNTrees: 7,
			wantDepth:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.opts...)
			assert.Equal(t, tt.wantNTrees, f.Config().NumTrees)
			assert.Equal(t, tt.wantDepth, f.Config().MaxDepth)
			assert.Nil(t, f.Forest())
		})
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name    string
		data    []features.Vector
		wantErr bool
	}{
		{
			name:    "empty data",
			data:    []features.Vector{},
			wantErr: true,
		},
		{
			name:    "single sample",
			data:    []features.Vector{features.New("one", []int{1, 2, 3})},
			wantErr: false,
		},
		{
			name:    "normal data",
			data:    generateTestData(100, 3),
			wantErr: false,
		},
		{
			name:    "wrong width",
			data:    generateTestData(100, 5),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(WithTrees(10), WithDimensions(3), WithSeed(42))
			err := f.Fit(tt.data)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrInvalidInput))
				assert.Nil(t, f.Forest())
			} else {
				require.NoError(t, err)
				require.NotNil(t, f.Forest())
				assert.Equal(t, 10, f.Forest().NumTrees())
			}
		})
	}
}

func TestFitInvalidConfig(t *testing.T) {
	f := New(WithDimensions(3), WithThreshold(1.5))
	err := f.Fit(generateTestData(10, 3))

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfiguration))
}

func TestPredict(t *testing.T) {
	// Train on normal data
	trainData := generateTestData(500, 5)
	f := New(WithTrees(50), WithSampleSize(100), WithDimensions(5), WithSeed(42))
	require.NoError(t, f.Fit(trainData))

	t.Run("predict on normal data", func(t *testing.T) {
		testData := generateTestData(100, 5)
		scores, err := f.Predict(testData)

		require.NoError(t, err)
		require.Len(t, scores, len(testData))

		// All scores should be in [0, 1]
		for i, score := range scores {
			assert.Equal(t, testData[i].ID(), score.ID)
			assert.GreaterOrEqual(t, score.Value, 0.0)
			assert.LessOrEqual(t, score.Value, 1.0)
			assert.Equal(t, detectors.Classify(score.Value, f.Threshold()), score.Verdict)
		}
	})

	t.Run("predict on anomalies", func(t *testing.T) {
		// Anomalous data: very different from training
		anomalies := []features.Vector{
			features.New("high", []int{5000, 5000, 5000, 5000, 5000}),
			features.New("low", []int{-5000, -5000, -5000, -5000, -5000}),
		}
		scores, err := f.Predict(anomalies)
		require.NoError(t, err)

		normal, err := f.Predict(generateTestData(50, 5))
		require.NoError(t, err)

		var mean float64
		for _, s := range normal {
			mean += s.Value
		}
		mean /= float64(len(normal))

		for _, score := range scores {
			assert.Greater(t, score.Value, mean, "anomalies should score above typical data")
		}
	})

	t.Run("wrong width", func(t *testing.T) {
		_, err := f.Predict(generateTestData(3, 4))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})

	t.Run("predict before fit", func(t *testing.T) {
		untrained := New(WithDimensions(5))
		_, err := untrained.Predict(trainData)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrNotTrained))
	})
}

func TestPredictParallelMatchesSequential(t *testing.T) {
	trainData := generateTestData(300, 4)
	testData := generateTestData(97, 4)

	sequential := New(WithTrees(30), WithSampleSize(64), WithDimensions(4), WithSeed(5))
	parallel := New(WithTrees(30), WithSampleSize(64), WithDimensions(4), WithSeed(5), WithWorkers(4))
	require.NoError(t, sequential.Fit(trainData))
	require.NoError(t, parallel.Fit(trainData))

	want, err := sequential.Predict(testData)
	require.NoError(t, err)
	got, err := parallel.Predict(testData)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestPredictOne(t *testing.T) {
	trainData := generateTestData(200, 3)
	f := New(WithTrees(20), WithDimensions(3), WithSeed(42))
	require.NoError(t, f.Fit(trainData))

	score, err := f.PredictOne(features.NewLabeled("probe", []int{0, 0, 0}, false))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, score.Value, 0.0)
	assert.LessOrEqual(t, score.Value, 1.0)
	require.NotNil(t, score.GroundTruth)
	assert.False(t, *score.GroundTruth)

	_, err = New().PredictOne(features.New("probe", []int{0, 0, 0}))
	assert.True(t, errors.Is(err, errors.ErrNotTrained))
}

func TestPredictStream(t *testing.T) {
	trainData := generateTestData(200, 3)
	f := New(WithTrees(20), WithDimensions(3), WithSeed(42))
	require.NoError(t, f.Fit(trainData))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	input := make(chan features.Vector, 10)
	output := make(chan detectors.Score, 10)

	errCh := make(chan error, 1)
	go func() {
		errCh <- f.PredictStream(ctx, input, output)
		close(output)
	}()

	// Send test samples
	testSamples := []features.Vector{
		features.New("a", []int{5, 5, 5}),
		features.New("b", []int{1000, 1000, 1000}), // anomaly
		features.New("bad", []int{1, 2}),           // dropped
		features.New("c", []int{3, 3, 3}),
	}

	go func() {
		for _, sample := range testSamples {
			input <- sample
		}
		close(input)
	}()

	// Receive results
	var ids []string
	for score := range output {
		ids = append(ids, score.ID)
	}

	require.NoError(t, <-errCh)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestPredictStreamCancel(t *testing.T) {
	f := New(WithDimensions(3), WithSeed(1))
	require.NoError(t, f.Fit(generateTestData(20, 3)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.PredictStream(ctx, make(chan features.Vector), make(chan detectors.Score))
	assert.ErrorIs(t, err, context.Canceled)

	err = New().PredictStream(context.Background(), nil, nil)
	assert.True(t, errors.Is(err, errors.ErrNotTrained))
}

func TestThreshold(t *testing.T) {
	f := New()

	// Test getter
	assert.Equal(t, 0.6, f.Threshold())

	// Test setter
	require.NoError(t, f.SetThreshold(0.7))
	assert.Equal(t, 0.7, f.Threshold())

	err := f.SetThreshold(1.5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfiguration))
	assert.Equal(t, 0.7, f.Threshold())

	assert.Equal(t, 0.4, New(WithThreshold(0.4)).Threshold())
}

func TestContaminationThreshold(t *testing.T) {
	trainData := generateTestData(200, 4)
	f := New(WithTrees(50), WithSampleSize(64), WithDimensions(4), WithContamination(0.1), WithSeed(3))
	require.NoError(t, f.Fit(trainData))

	scores, err := f.Predict(trainData)
	require.NoError(t, err)

	flagged := 0
	for _, s := range scores {
		if s.IsAnomaly() {
			flagged++
		}
	}

	assert.NotEqual(t, 0.6, f.Threshold())
	assert.GreaterOrEqual(t, flagged, 20)
	assert.LessOrEqual(t, flagged, 40)
}

func TestContaminationQuantile(t *testing.T) {
	scores := []float64{0.9, 0.1, 0.5, 0.3, 0.7, 0.2, 0.8, 0.4, 0.6, 1.0}
	assert.Equal(t, 0.9, contaminationThreshold(scores, 0.1))
	assert.Equal(t, 0.8, contaminationThreshold(scores, 0.2))
	// input is left untouched
	assert.Equal(t, 0.9, scores[0])
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := New(WithTrees(12), WithDimensions(3), WithSeed(9), WithRegisterer(reg))

	require.NoError(t, f.Fit(generateTestData(50, 3)))
	_, err := f.Predict(generateTestData(25, 3))
	require.NoError(t, err)
	_, err = f.PredictOne(features.New("x", []int{1, 1, 1}))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.fits))
	assert.Equal(t, 12.0, testutil.ToFloat64(f.metrics.trees))
	assert.Equal(t, 0.6, testutil.ToFloat64(f.metrics.threshold))
	assert.Equal(t, 26.0, testutil.ToFloat64(f.metrics.scored))

	count, err := testutil.GatherAndCount(reg, "syscallguard_anomaly_score")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFitLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	f := New(WithTrees(4), WithDimensions(3), WithSeed(1), WithLogger(logger))
	require.NoError(t, f.Fit(generateTestData(30, 3)))

	out := buf.String()
	assert.Equal(t, 4, strings.Count(out, `"message":"tree built"`))
	assert.Contains(t, out, `"message":"training isolation forest"`)
	assert.Contains(t, out, `"message":"isolation forest training complete"`)
}

func BenchmarkFit(b *testing.B) {
	data := generateTestData(10000, 10)
	f := New(WithTrees(100), WithSampleSize(256), WithDimensions(10), WithSeed(1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Fit(data)
	}
}

func BenchmarkFitParallel(b *testing.B) {
	data := generateTestData(10000, 10)
	f := New(WithTrees(100), WithSampleSize(256), WithDimensions(10), WithSeed(1), WithWorkers(8))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Fit(data)
	}
}

func BenchmarkPredict(b *testing.B) {
	trainData := generateTestData(5000, 10)
	testData := generateTestData(1000, 10)

	f := New(WithTrees(100), WithSampleSize(256), WithDimensions(10), WithSeed(1))
	f.Fit(trainData)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Predict(testData)
	}
}

func BenchmarkPredictOne(b *testing.B) {
	trainData := generateTestData(5000, 10)
	sample := generateTestData(1, 10)[0]

	f := New(WithTrees(100), WithSampleSize(256), WithDimensions(10), WithSeed(1))
	f.Fit(trainData)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.PredictOne(sample)
	}
}

var testRand = rand.New(rand.NewSource(1))

func generateTestData(n, width int) []features.Vector {
	data := make([]features.Vector, n)
	for i := 0; i < n; i++ {
		values := make([]int, width)
		for j := range values {
			values[j] = int(testRand.NormFloat64() * 100)
		}
		data[i] = features.New("sample", values)
	}
	return data
}
