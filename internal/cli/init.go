package cli

import "fmt"

type InitCmd struct{}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized feeder registry at: %s\n", ctx.Store.Path())
	fmt.Println("Run 'pawfeeds scan' to find feeders on your network.")
	return nil
}
