package bio_test

import (
	"context"
	"testing"

	"github.com/brickingsoft/bio"
)

func TestStartup(t *testing.T) {
	ctx := context.Background()
	err := bio.Startup()
	if err != nil {
		t.Fatal(err)
	}
	err = bio.Executors().Execute(ctx, func() {
		t.Log("do...")
	})
	if err != nil {
		t.Error(err)
	}
	err = bio.Shutdown()
	if err != nil {
		t.Error(err)
	}
}
