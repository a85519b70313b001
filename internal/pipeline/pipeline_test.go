package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/strataworks/lithos/internal/confidence"
	"github.com/strataworks/lithos/internal/crosscheck"
	"github.com/strataworks/lithos/internal/fallback"
	"github.com/strataworks/lithos/internal/geology"
	"github.com/strataworks/lithos/internal/pipeline"
	"github.com/strataworks/lithos/internal/regioncache"
	"github.com/strataworks/lithos/internal/rockid"
	"github.com/strataworks/lithos/internal/session"
	"github.com/strataworks/lithos/internal/strata"
	"github.com/strataworks/lithos/internal/verify"
)

type scriptedClassifier struct {
	observations []pipeline.Observation
	errs         []error
	calls        int
}

func (c *scriptedClassifier) Classify(context.Context, pipeline.Request) (pipeline.Observation, error) {
	i := c.calls
	c.calls++

	if i < len(c.errs) && c.errs[i] != nil {
		return pipeline.Observation{}, c.errs[i]
	}
	if i >= len(c.observations) {
		i = len(c.observations) - 1
	}

	// copy so attempts do not share a mutated result
	obs := c.observations[i]
	if obs.Result != nil {
		result := *obs.Result
		obs.Result = &result
	}
	return obs, nil
}

type stubProvider struct {
	column *strata.Column
	err    error
}

func (s *stubProvider) Column(context.Context, float64, float64) (*strata.Column, error) {
	return s.column, s.err
}

type stubSecondary struct {
	opinion *verify.Opinion
	err     error
	calls   int
}

func (s *stubSecondary) Verify(context.Context, string, string, geology.RockClass, *rockid.LocationContext) (*verify.Opinion, error) {
	s.calls++
	return s.opinion, s.err
}

func observation(name string, class geology.RockClass, score float64) pipeline.Observation {
	return pipeline.Observation{
		Result: &rockid.Result{
			Name:            name,
			RockType:        class,
			ConfidenceScore: score,
			Method:          rockid.MethodAIVision,
		},
	}
}

func testColumn() *strata.Column {
	return &strata.Column{
		Name: "Austin-Central Texas",
		Units: []strata.Unit{
			{Name: "Edwards Formation", Lithology: "limestone"},
			{Name: "Glen Rose Formation", Lithology: "limestone and marl"},
		},
	}
}

type runtimeOptions struct {
	primary   pipeline.Classifier
	provider  strata.Provider
	secondary verify.Classifier
}

func newRuntime(t *testing.T, opts runtimeOptions) *pipeline.Runtime {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.provider == nil {
		opts.provider = &stubProvider{err: strata.ErrNoColumn}
	}
	if opts.secondary == nil {
		opts.secondary = &stubSecondary{err: errors.New("no secondary configured")}
	}

	regions := regioncache.New(
		regioncache.NewMemoryStore(),
		regioncache.DefaultTTL,
		regioncache.DefaultCapacity,
		regioncache.DefaultResolution,
		logger,
	)

	return &pipeline.Runtime{
		Primary: opts.primary,
		Checker: crosscheck.New(opts.provider, crosscheck.DefaultConfig(), logger),
		Verifier: verify.New(opts.secondary, verify.DefaultConfig(), logger),
		Fallback: fallback.New(
			opts.provider,
			regions,
			fallback.NoLocation{},
			confidence.DefaultThresholds(),
			fallback.DefaultConfig(),
			logger,
		),
		Sessions: session.NewManager(verify.DefaultCacheTTL, session.DefaultIdleTTL),
		Config:   pipeline.DefaultConfig(),
		Logger:   logger,
	}
}

func loc() *rockid.LocationContext {
	return &rockid.LocationContext{Latitude: 30.1, Longitude: -97.8}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestExecuteHighConfidence(t *testing.T) {
	rt := newRuntime(t, runtimeOptions{
		primary: &scriptedClassifier{observations: []pipeline.Observation{
			observation("Granite", geology.Igneous, 0.85),
		}},
	})

	attempt := pipeline.Execute(context.Background(), rt, pipeline.Request{Image: "data:image/jpeg;base64,x"})

	if attempt.Retry != nil {
		t.Fatalf("unexpected retry: %+v", attempt.Retry)
	}
	if attempt.Result == nil {
		t.Fatal("expected a result")
	}
	if attempt.Number != 1 {
		t.Errorf("attempt number = %d, want 1", attempt.Number)
	}
	if attempt.SessionID == uuid.Nil {
		t.Error("expected an assigned session id")
	}
	if attempt.Result.Method != rockid.MethodAIVision {
		t.Errorf("method = %s, want ai_vision", attempt.Result.Method)
	}
	if attempt.Result.ConfidenceLevel != confidence.TierHigh {
		t.Errorf("tier = %s, want high", attempt.Result.ConfidenceLevel)
	}
}

func TestExecuteRetriesThenFallback(t *testing.T) {
	rt := newRuntime(t, runtimeOptions{
		primary: &scriptedClassifier{observations: []pipeline.Observation{
			observation("Unknown", geology.Sedimentary, 0.30),
		}},
		provider: &stubProvider{column: testColumn()},
	})

	req := pipeline.Request{Image: "data:image/jpeg;base64,x", Location: loc()}

	first := pipeline.Execute(context.Background(), rt, req)
	if first.Retry == nil || first.Result != nil {
		t.Fatalf("attempt 1 should be a retry, got %+v", first)
	}
	if first.Retry.AttemptNumber != 1 {
		t.Errorf("retry attempt number = %d, want 1", first.Retry.AttemptNumber)
	}

	req.SessionID = first.SessionID
	second := pipeline.Execute(context.Background(), rt, req)
	if second.Retry == nil {
		t.Fatal("attempt 2 should be a retry")
	}
	if second.Number != 2 {
		t.Errorf("attempt number = %d, want 2", second.Number)
	}
	if second.SessionID != first.SessionID {
		t.Error("session id changed between attempts")
	}

	third := pipeline.Execute(context.Background(), rt, req)
	if third.Retry != nil {
		t.Fatal("attempt 3 should be terminal")
	}
	if third.Result == nil {
		t.Fatal("expected the fallback result")
	}
	if third.Result.Method != rockid.MethodLocationFallback {
		t.Errorf("method = %s, want location_fallback", third.Result.Method)
	}
	if !almostEqual(third.Result.ConfidenceScore, 0.45) {
		t.Errorf("confidence = %v, want 0.45", third.Result.ConfidenceScore)
	}
	if third.Result.Name != "Edwards Formation" {
		t.Errorf("name = %s, want topmost unit", third.Result.Name)
	}
}

func TestExecuteClassifierFailureSyntheticRetry(t *testing.T) {
	rt := newRuntime(t, runtimeOptions{
		primary: &scriptedClassifier{
			observations: []pipeline.Observation{{}},
			errs:         []error{errors.New("connection refused")},
		},
	})

	attempt := pipeline.Execute(context.Background(), rt, pipeline.Request{Image: "data:image/jpeg;base64,x"})

	if attempt.Retry == nil {
		t.Fatal("expected a synthetic retry")
	}
	if attempt.Retry.Message != "Something went wrong" {
		t.Errorf("message = %q, want generic failure prompt", attempt.Retry.Message)
	}
}

func TestExecuteCrossCheckAdjustment(t *testing.T) {
	rt := newRuntime(t, runtimeOptions{
		primary: &scriptedClassifier{observations: []pipeline.Observation{
			observation("Limestone", geology.Sedimentary, 0.80),
		}},
		provider: &stubProvider{column: testColumn()},
	})

	attempt := pipeline.Execute(context.Background(), rt, pipeline.Request{
		Image:    "data:image/jpeg;base64,x",
		Location: loc(),
	})

	if attempt.Result == nil {
		t.Fatal("expected a result")
	}
	if !almostEqual(attempt.Result.ConfidenceScore, 0.95) {
		t.Errorf("confidence = %v, want 0.95 after cross-check boost", attempt.Result.ConfidenceScore)
	}
	if !attempt.Result.LocationVerified {
		t.Error("location_verified should be true")
	}
	if attempt.Result.Column == nil {
		t.Error("expected the stratigraphic column attached")
	}
}

func TestExecuteNoLocationSkipsCrossCheck(t *testing.T) {
	rt := newRuntime(t, runtimeOptions{
		primary: &scriptedClassifier{observations: []pipeline.Observation{
			observation("Limestone", geology.Sedimentary, 0.80),
		}},
		provider: &stubProvider{column: testColumn()},
	})

	attempt := pipeline.Execute(context.Background(), rt, pipeline.Request{Image: "data:image/jpeg;base64,x"})

	if attempt.Result == nil {
		t.Fatal("expected a result")
	}
	if !almostEqual(attempt.Result.ConfidenceScore, 0.80) {
		t.Errorf("confidence = %v, want untouched 0.80", attempt.Result.ConfidenceScore)
	}
	if attempt.Result.LocationVerified {
		t.Error("location_verified should be false without a location")
	}
	if attempt.Result.Column != nil {
		t.Error("no column should be attached without a location")
	}
}

func TestExecuteDualVerifyForPro(t *testing.T) {
	secondary := &stubSecondary{opinion: &verify.Opinion{SecondaryIdentification: "Granite"}}
	rt := newRuntime(t, runtimeOptions{
		primary: &scriptedClassifier{observations: []pipeline.Observation{
			observation("Granite", geology.Igneous, 0.85),
		}},
		secondary: secondary,
	})

	attempt := pipeline.Execute(context.Background(), rt, pipeline.Request{
		Image: "data:image/jpeg;base64,x",
		Pro:   true,
	})

	if attempt.Result == nil {
		t.Fatal("expected a result")
	}
	if attempt.Result.Method != rockid.MethodAIVerified {
		t.Errorf("method = %s, want ai_verified", attempt.Result.Method)
	}
	if !attempt.Result.DualAIVerified {
		t.Error("dual_ai_verified should be true")
	}
	if !almostEqual(attempt.Result.ConfidenceScore, 0.90) {
		t.Errorf("confidence = %v, want 0.90 after agreement bump", attempt.Result.ConfidenceScore)
	}
	if secondary.calls != 1 {
		t.Errorf("secondary calls = %d, want 1", secondary.calls)
	}
}

func TestExecuteDualVerifyCachedAcrossAttempts(t *testing.T) {
	secondary := &stubSecondary{opinion: &verify.Opinion{SecondaryIdentification: "Granite"}}
	rt := newRuntime(t, runtimeOptions{
		primary: &scriptedClassifier{observations: []pipeline.Observation{
			observation("Granite", geology.Igneous, 0.85),
		}},
		secondary: secondary,
	})

	req := pipeline.Request{Image: "data:image/jpeg;base64,x", Pro: true}
	first := pipeline.Execute(context.Background(), rt, req)

	req.SessionID = first.SessionID
	req.Image = "data:image/jpeg;base64,y"
	second := pipeline.Execute(context.Background(), rt, req)

	if second.Result == nil || second.Result.Method != rockid.MethodAIVerified {
		t.Fatalf("second attempt should reuse the cached agreement, got %+v", second)
	}
	if secondary.calls != 1 {
		t.Errorf("secondary calls = %d, want 1 (cache hit on same name)", secondary.calls)
	}
}

func TestExecuteNoDualVerifyForFreeTier(t *testing.T) {
	secondary := &stubSecondary{opinion: &verify.Opinion{SecondaryIdentification: "Granite"}}
	rt := newRuntime(t, runtimeOptions{
		primary: &scriptedClassifier{observations: []pipeline.Observation{
			observation("Granite", geology.Igneous, 0.85),
		}},
		secondary: secondary,
	})

	attempt := pipeline.Execute(context.Background(), rt, pipeline.Request{Image: "data:image/jpeg;base64,x"})

	if attempt.Result == nil {
		t.Fatal("expected a result")
	}
	if attempt.Result.Method != rockid.MethodAIVision {
		t.Errorf("method = %s, want ai_vision", attempt.Result.Method)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary calls = %d, want 0 for free tier", secondary.calls)
	}
}

func TestExecuteNoDualVerifyForMediumTier(t *testing.T) {
	secondary := &stubSecondary{opinion: &verify.Opinion{SecondaryIdentification: "Granite"}}
	rt := newRuntime(t, runtimeOptions{
		primary: &scriptedClassifier{observations: []pipeline.Observation{
			observation("Granite", geology.Igneous, 0.60),
		}},
		secondary: secondary,
	})

	attempt := pipeline.Execute(context.Background(), rt, pipeline.Request{
		Image: "data:image/jpeg;base64,x",
		Pro:   true,
	})

	if attempt.Result == nil {
		t.Fatal("expected a result")
	}
	if secondary.calls != 0 {
		t.Errorf("secondary calls = %d, want 0 below high tier", secondary.calls)
	}
}

func TestExecuteRetryUsesModelGuidance(t *testing.T) {
	obs := observation("Unknown", geology.Sedimentary, 0.30)
	obs.RetryGuidance = "The camera is too far from the specimen. Try to get closer so more detail is visible."
	rt := newRuntime(t, runtimeOptions{
		primary: &scriptedClassifier{observations: []pipeline.Observation{obs}},
	})

	attempt := pipeline.Execute(context.Background(), rt, pipeline.Request{
		Image: "data:image/jpeg;base64,x",
		Zoom:  0.25,
	})

	if attempt.Retry == nil {
		t.Fatal("expected a retry")
	}
	if attempt.Retry.Message != "The camera is too far from the specimen." {
		t.Errorf("message = %q, want first guidance sentence", attempt.Retry.Message)
	}
	if attempt.Retry.SuggestedZoom == nil || *attempt.Retry.SuggestedZoom != 0.5 {
		t.Errorf("suggested zoom = %v, want one step up to 0.5", attempt.Retry.SuggestedZoom)
	}
}

func TestExecuteRetryUsesUncertaintyHint(t *testing.T) {
	obs := observation("Unknown", geology.Sedimentary, 0.30)
	obs.UncertaintyReason = "blur"
	rt := newRuntime(t, runtimeOptions{
		primary: &scriptedClassifier{observations: []pipeline.Observation{obs}},
	})

	req := pipeline.Request{Image: "data:image/jpeg;base64,x"}
	first := pipeline.Execute(context.Background(), rt, req)

	req.SessionID = first.SessionID
	second := pipeline.Execute(context.Background(), rt, req)

	if second.Retry == nil {
		t.Fatal("expected a retry")
	}
	// blur overrides the attempt-2 canned prompt with the attempt-1 prompt
	if second.Retry.Message != "The image is unclear" {
		t.Errorf("message = %q, want blur override", second.Retry.Message)
	}
	if second.Retry.AttemptNumber != 2 {
		t.Errorf("attempt number = %d, want 2", second.Retry.AttemptNumber)
	}
}

func TestExecuteOfflineMiss(t *testing.T) {
	rt := newRuntime(t, runtimeOptions{
		primary: &scriptedClassifier{observations: []pipeline.Observation{{}}},
	})

	attempt := pipeline.ExecuteOffline(context.Background(), rt, pipeline.Request{Location: loc()})

	if attempt.Result == nil {
		t.Fatal("expected a result")
	}
	if attempt.Result.Method != rockid.MethodOfflineCache {
		t.Errorf("method = %s, want offline_cache", attempt.Result.Method)
	}
	if !almostEqual(attempt.Result.ConfidenceScore, 0.20) {
		t.Errorf("confidence = %v, want 0.20 on a cache miss", attempt.Result.ConfidenceScore)
	}
}
