// Package notifier delivers operator alerts about the generation pipeline.
package notifier

//go:generate go run go.uber.org/mock/mockgen -source=notifier.go -destination=mocks/mock.go

type Client interface {
	// NotifyFailure reports an escalated pipeline failure. Best effort.
	NotifyFailure(message string)

	// NotifyBatchCreated reports a successfully installed batch. Best effort.
	NotifyBatchCreated(idea, provider string, draftCount int)
}
