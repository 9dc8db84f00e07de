package wa

import (
	"context"
	"errors"
	"fmt"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.uber.org/zap"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotPaired is returned by Connect when the device store has no credentials.
var ErrNotPaired = errors.New("whatsapp device not paired")

// Adapter owns the whatsmeow client for an already-paired device. Pairing
// happens elsewhere; the adapter only reads its credentials.
type Adapter struct {
	client *whatsmeow.Client
	logger *zap.Logger
}

// NewAdapter opens the whatsmeow device store at dbPath.
func NewAdapter(ctx context.Context, dbPath string, logger *zap.Logger) (*Adapter, error) {
	container, err := sqlstore.New(ctx, "sqlite3",
		fmt.Sprintf("file:%s?_foreign_keys=on", dbPath),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("open device store: %w", err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("get device: %w", err)
	}

	return &Adapter{
		client: whatsmeow.NewClient(device, nil),
		logger: logger,
	}, nil
}

// IsPaired reports whether the device store holds credentials.
func (a *Adapter) IsPaired() bool {
	return a.client.Store.ID != nil
}

// Subscribe routes whatsmeow events to h.
func (a *Adapter) Subscribe(h *EventHandler) {
	a.client.AddEventHandler(h.Handle)
}

// Connect starts the WhatsApp connection.
func (a *Adapter) Connect() error {
	if !a.IsPaired() {
		return ErrNotPaired
	}
	a.logger.Info("connecting to WhatsApp", zap.String("user", a.client.Store.ID.User))
	return a.client.Connect()
}

// Disconnect closes the connection.
func (a *Adapter) Disconnect() {
	a.logger.Info("disconnecting from WhatsApp")
	a.client.Disconnect()
}
