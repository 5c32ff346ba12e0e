package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/vburojevic/obcall/internal/domain"
)

// Dev stages of a simulated contact, measured from placement.
const (
	devConnectAfter    = 5 * time.Second
	devDisconnectAfter = 40 * time.Second
)

// Dev simulates a contact center for local runs without cloud access. The
// placement time is encoded in the contact id, so a contact placed by one
// process can be described by another.
type Dev struct {
	clock clock.Clock
	seq   atomic.Int64
}

// NewDev creates a Dev provider; a nil clock uses wall time.
func NewDev(clk clock.Clock) *Dev {
	if clk == nil {
		clk = clock.New()
	}
	return &Dev{clock: clk}
}

func (d *Dev) PlaceOutboundCall(ctx context.Context, in PlaceCallInput) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", classify("PlaceOutboundCall", err)
	}
	return fmt.Sprintf("dev-%d-%04d", d.clock.Now().Unix(), d.seq.Add(1)), nil
}

func (d *Dev) DescribeContact(ctx context.Context, instanceID, contactID string) (domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return domain.Contact{}, classify("DescribeContact", err)
	}
	placed, ok := parseDevContactID(contactID)
	if !ok {
		return domain.Contact{}, &domain.ProviderError{
			Op:      "DescribeContact",
			Code:    "ResourceNotFoundException",
			Message: fmt.Sprintf("contact %s not found in instance %s", contactID, instanceID),
			Kind:    domain.KindTerminal,
		}
	}

	elapsed := d.clock.Now().Sub(placed)
	contact := domain.Contact{ContactID: contactID, InitiationTime: &placed}
	if elapsed >= devConnectAfter {
		connected := placed.Add(devConnectAfter)
		contact.SystemConnectTime = &connected
		contact.DetectionResult = "HUMAN"
	}
	if elapsed >= devDisconnectAfter {
		disconnected := placed.Add(devDisconnectAfter)
		contact.DisconnectTime = &disconnected
		contact.DisconnectReason = "CUSTOMER_DISCONNECT"
	}
	return contact, nil
}

func parseDevContactID(id string) (time.Time, bool) {
	parts := strings.Split(id, "-")
	if len(parts) != 3 || parts[0] != "dev" {
		return time.Time{}, false
	}
	sec, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(sec, 0).UTC(), true
}
