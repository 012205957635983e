package integration

import (
	"context"
	"os"
	"testing"

	"github.com/cucumber/godog"
)

func TestFeatures(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("set INTEGRATION_TEST=1 to run the feature suite")
	}

	ctx := context.Background()
	tc, err := NewTestContext(ctx)
	if err != nil {
		t.Fatalf("integration environment: %v", err)
	}
	t.Cleanup(func() { tc.Close(ctx) })

	opts := &godog.Options{
		Format:   "pretty",
		Paths:    []string{"features"},
		Strict:   true,
		TestingT: t,
	}
	if tags := os.Getenv("GODOG_TAGS"); tags != "" {
		opts.Tags = tags
	}

	suite := godog.TestSuite{
		Name: "pwstore",
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			NewStepsContext(tc).RegisterSteps(sc)
		},
		Options: opts,
	}
	if status := suite.Run(); status != 0 {
		t.Fatalf("feature suite exited with status %d", status)
	}
}
