package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/pawfeeds/companion/internal/provision"
)

type ResetCmd struct {
	Address string `arg:"" help:"LAN address of the feeder-brain to wipe."`
	Yes     bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ResetCmd) Run(ctx *Context) error {
	if !c.Yes {
		var confirm bool
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Factory-reset the device at %s?", c.Address)).
			Description("This wipes its Wi-Fi credentials and identity.").
			Value(&confirm).
			Run()
		if err != nil {
			return err
		}
		if !confirm {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if !provision.NewClient("").FactoryReset(context.Background(), c.Address) {
		return fmt.Errorf("device at %s did not acknowledge the reset", c.Address)
	}
	fmt.Println("Device reset; it will reboot into setup mode.")
	return nil
}
