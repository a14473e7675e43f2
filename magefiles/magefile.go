//go:build mage

package main

import (
	"context"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/contriboss/espeakgen"
)

// Default target to run when none is specified.
var Default = Provision

func config() (*espeakgen.Config, error) {
	return espeakgen.LoadConfig("", ".env")
}

// Provision obtains espeak-ng, generates the bindings and prints the linker directives.
func Provision(ctx context.Context) error {
	cfg, err := config()
	if err != nil {
		return mg.Fatal(1, err)
	}
	result, err := espeakgen.NewRegistry().Run(ctx, cfg)
	if err != nil {
		return mg.Fatal(1, err)
	}
	return espeakgen.Emit(os.Stdout, cfg.Format, result.Directives)
}

// Link obtains espeak-ng and prints the linker directives only.
func Link(ctx context.Context) error {
	cfg, err := config()
	if err != nil {
		return mg.Fatal(1, err)
	}
	result, err := espeakgen.NewRegistry().Provision(ctx, cfg)
	if err != nil {
		return mg.Fatal(1, err)
	}
	return espeakgen.Emit(os.Stdout, cfg.Format, result.Directives)
}

// Bindings regenerates the Go bindings when the wrapper header changed.
func Bindings(ctx context.Context) error {
	cfg, err := config()
	if err != nil {
		return mg.Fatal(1, err)
	}
	directives, err := espeakgen.NewRegistry().Directives(cfg)
	if err != nil {
		return mg.Fatal(1, err)
	}
	result := &espeakgen.Result{Directives: directives}
	if err := espeakgen.GenerateBindings(ctx, cfg, directives, result); err != nil {
		return mg.Fatal(1, err)
	}
	return nil
}

// Clean removes build artifacts and generated bindings.
func Clean(ctx context.Context) error {
	cfg, err := config()
	if err != nil {
		return mg.Fatal(1, err)
	}
	return espeakgen.NewRegistry().Clean(ctx, cfg)
}

// Install builds the espeakgen command into $GOPATH/bin.
func Install() error {
	return sh.RunV("go", "install", "./cmd/espeakgen")
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}
