package main

import (
	"os"
	"os/exec"

	"github.com/goyek/goyek/v2"
)

const fixturePath = "fixtures/golden-tpe/tpe_golden.json"

func goCmd(a *goyek.A, args ...string) {
	a.Helper()
	a.Log("go ", args)
	cmd := exec.CommandContext(a.Context(), "go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		a.Error(err)
	}
}

var vet = goyek.Define(goyek.Task{
	Name:  "vet",
	Usage: "Run go vet on all packages",
	Action: func(a *goyek.A) {
		goCmd(a, "vet", "./...")
	},
})

var test = goyek.Define(goyek.Task{
	Name:  "test",
	Usage: "Run the test suite with the race detector",
	Deps:  goyek.Deps{vet},
	Action: func(a *goyek.A) {
		goCmd(a, "test", "-race", "./...")
	},
})

var generate = goyek.Define(goyek.Task{
	Name:  "generate",
	Usage: "Regenerate the golden fixture with the default configuration",
	Deps:  goyek.Deps{test},
	Action: func(a *goyek.A) {
		goCmd(a, "run", "./cmd/tpe-golden", "-config", "config/tpe-golden.yaml", "-out", fixturePath)
	},
})

var _ = goyek.Define(goyek.Task{
	Name:  "verify",
	Usage: "Regenerate and compare against the committed golden fixture",
	Action: func(a *goyek.A) {
		goCmd(a, "run", "./cmd/tpe-golden", "-config", "config/tpe-golden.yaml", "-verify", fixturePath)
	},
})

func main() {
	goyek.SetDefault(generate)
	goyek.Main(os.Args[1:])
}
