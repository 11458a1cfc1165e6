package view

import (
	"fmt"
	"io"
	"sync"
)

// Variant styles a notification.
type Variant string

const (
	VariantSuccess     Variant = "success"
	VariantDestructive Variant = "destructive"
)

// Notifier prints transient notifications.
type Notifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{w: w}
}

func (n *Notifier) Notify(v Variant, title, description string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if description == "" {
		fmt.Fprintf(n.w, "[%s] %s\n", v, title)
		return
	}
	fmt.Fprintf(n.w, "[%s] %s: %s\n", v, title, description)
}

func (n *Notifier) Success(title, description string) {
	n.Notify(VariantSuccess, title, description)
}

func (n *Notifier) Error(title string, err error) {
	n.Notify(VariantDestructive, title, err.Error())
}
