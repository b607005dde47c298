// Package cmd provides common initialization for the command-line binaries.
package cmd

import (
	"log/slog"

	"github.com/tdaniel1925/clientflow/pkg/callflow"
	"github.com/tdaniel1925/clientflow/pkg/messaging"
	"github.com/tdaniel1925/clientflow/pkg/persistence"
	"github.com/tdaniel1925/clientflow/pkg/registry"
)

// NewRegistry builds the action registry with the native workflow actions
// wired against the given store and the real messaging senders.
func NewRegistry(logger *slog.Logger, store persistence.Persistence) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.RegisterAction(callflow.NewSendEmailActionFactory(
		store.Templates(), store.Credentials(), messaging.NewSMTPSender()))
	reg.RegisterAction(callflow.NewSendSMSActionFactory(
		store.Templates(), store.Credentials(), messaging.NewTwilioSender()))
	reg.RegisterAction(callflow.NewCreateTaskActionFactory(store.Tasks()))

	return reg
}
