package typed_test

import (
	"context"
	"fmt"

	"github.com/askiada/go-typed-pipeline/pkg/component"
	"github.com/askiada/go-typed-pipeline/pkg/typed"
)

type greetingInput struct {
	Name string `json:"name"`
}

type greetingOutput struct {
	Message string `json:"message"`
	Length  int    `json:"length"`
}

type greeter struct{}

func (g *greeter) Run(ctx context.Context, in greetingInput) (greetingOutput, error) {
	msg := "hello " + in.Name
	return greetingOutput{Message: msg, Length: len(msg)}, nil
}

func ExamplePipeline_Run() {
	p, err := typed.New()
	if err != nil {
		panic(err)
	}
	err = p.AddComponent("greeter", component.MustNew(&greeter{}))
	if err != nil {
		panic(err)
	}

	out, err := p.Run(context.Background(), map[string]any{"name": "gopher"}, nil)
	if err != nil {
		panic(err)
	}
	greeting, err := typed.Output[greetingOutput](out, "greeter")
	if err != nil {
		panic(err)
	}
	fmt.Println(greeting.Message, greeting.Length)
	// Output: hello gopher 12
}
