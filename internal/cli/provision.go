package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/huh"

	"github.com/pawfeeds/companion/internal/models"
	"github.com/pawfeeds/companion/internal/provision"
)

type ProvisionCmd struct {
	AP       string `help:"AP-mode address of the new device." default:"192.168.4.1"`
	Slot     int    `short:"s" help:"Feeder slot to bind (1 or 2)." default:"1"`
	Name     string `short:"n" help:"Short device name, baked into its hostname."`
	SSID     string `help:"Wi-Fi network (skips the picker)."`
	Password string `help:"Wi-Fi password (skips the prompt)."`
}

func (c *ProvisionCmd) Validate() error {
	if c.Slot != 1 && c.Slot != 2 {
		return fmt.Errorf("slot must be 1 or 2")
	}
	return nil
}

func (c *ProvisionCmd) Run(ctx *Context) error {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := provision.NewClient(c.AP)

	ssid := c.SSID
	password := c.Password
	name := c.Name

	if ssid == "" {
		fmt.Printf("Asking the device at %s for visible networks...\n", c.AP)
		networks, err := client.Networks(runCtx)
		if err != nil {
			return fmt.Errorf("is this machine on the feeder's setup network? %w", err)
		}
		if len(networks) == 0 {
			return fmt.Errorf("the device reported no visible Wi-Fi networks")
		}

		options := make([]huh.Option[string], 0, len(networks))
		for _, n := range networks {
			label := n.SSID
			if n.RSSI != 0 {
				label = fmt.Sprintf("%s (%d dBm)", n.SSID, n.RSSI)
			}
			if !n.Secure {
				label += " [open]"
			}
			options = append(options, huh.NewOption(label, n.SSID))
		}

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Wi-Fi network").
					Options(options...).
					Value(&ssid),
				huh.NewInput().
					Title("Wi-Fi password").
					EchoMode(huh.EchoModePassword).
					Value(&password),
				huh.NewInput().
					Title("Device name").
					Description("Optional short name for this feeder (e.g. kitchen).").
					Value(&name),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
	}

	fmt.Println("Sending credentials to the device...")
	res := client.Provision(runCtx, models.ProvisionRequest{
		SSID:     ssid,
		Password: password,
		Hostname: name,
		UID:      ctx.UID,
		FeederID: c.Slot,
	})
	if !res.Success {
		return fmt.Errorf("provisioning failed: %s", res.Message)
	}

	slots, err := ctx.Store.Load()
	if err != nil {
		return err
	}
	slotID := c.Slot
	if res.FeederID > 0 {
		slotID = res.FeederID
	}
	slot, err := findSlot(slots, slotID)
	if err != nil {
		return err
	}
	if res.DeviceID != "" {
		slot.DeviceID = res.DeviceID
	}
	if res.CameraIP != "" {
		slot.CameraAddress = res.CameraIP
	}
	if res.FeederIP != "" {
		slot.FeederAddress = res.FeederIP
	}
	if name != "" {
		slot.Name = fmt.Sprintf("Feeder %d (%s)", slot.ID, name)
	}
	if err := ctx.Store.Save(slots); err != nil {
		return err
	}

	fmt.Printf("Device provisioned onto %q.\n", ssid)
	fmt.Println("It will reboot and join your network; run 'pawfeeds scan' in a minute to find it.")
	return nil
}
