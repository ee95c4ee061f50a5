package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"go.trai.ch/mason/internal/adapters/sandbox"
	"go.trai.ch/mason/internal/core/domain"
)

// TestMain lets scripts run mason in-process through the test binary.
func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"mason": func() {
			os.Exit(run(context.Background(), os.Args[1:], os.Stderr, graftComponents))
		},
	})
}

func TestScripts(t *testing.T) {
	t.Parallel()

	testscript.Run(t, testscript.Params{
		Dir:       filepath.Join("testdata", "script"),
		Setup:     setupScript,
		Condition: scriptCondition,
	})
}

func setupScript(env *testscript.Env) error {
	env.Setenv("NO_COLOR", "1")
	env.Setenv("CI", "true")

	home := filepath.Join(env.WorkDir, ".home")
	if err := os.MkdirAll(home, domain.DirPerm); err != nil {
		return err
	}
	env.Setenv("HOME", home)
	return nil
}

// scriptCondition reports "readonly" when the host can run manual elements
// against read-only roots.
func scriptCondition(cond string) (bool, error) {
	if cond == "readonly" {
		return sandbox.CheckReadOnly() == nil, nil
	}
	return false, fmt.Errorf("unknown condition %q", cond)
}
