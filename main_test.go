package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTotalsCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "prestamos.yaml")
	if err := os.WriteFile(cfgPath, []byte("docstore:\n  driver: memory\nblob:\n  driver: memory\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"totales", "--config", cfgPath})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"Clientes:  0", "Préstamos: 0"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output %q does not contain %q", out.String(), want)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	rootCmd.SetArgs([]string{"nada"})
	if err := rootCmd.Execute(); err == nil {
		t.Error("got nil error for an unknown command")
	}
}
