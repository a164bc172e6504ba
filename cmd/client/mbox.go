package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/emersion/go-mbox"
	"github.com/google/subcommands"
	"github.com/instanttempmail/tempmail/pkg/rest/client"
	"github.com/instanttempmail/tempmail/pkg/rest/model"
)

type mboxCmd struct {
	delete bool
}

func (*mboxCmd) Name() string {
	return "mbox"
}

func (*mboxCmd) Synopsis() string {
	return "output mailbox in mbox format"
}

func (*mboxCmd) Usage() string {
	return `mbox [flags] <mailbox>:
	output mailbox in mbox format
`
}

func (m *mboxCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&m.delete, "delete", false, "delete messages after output")
}

func (m *mboxCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	mailbox := f.Arg(0)
	if mailbox == "" {
		return usage("mailbox required")
	}

	// Setup REST client
	c, err := newClient()
	if err != nil {
		return fatal("Couldn't build client", err)
	}

	// List first, so only exported messages are deleted.
	ib, err := c.GetInbox(ctx, mailbox)
	if err != nil {
		return fatal("List REST call failed", err)
	}
	buf, err := c.Mbox(ctx, mailbox)
	if err != nil {
		return fatal("Mbox REST call failed", err)
	}
	if _, err := buf.WriteTo(os.Stdout); err != nil {
		return fatal("Error", err)
	}

	// Optionally, delete retrieved messages
	if m.delete {
		for _, h := range ib.Headers() {
			err = h.Delete(ctx)
			if err != nil {
				return fatal("Delete REST call failed", err)
			}
		}
	}

	return subcommands.ExitSuccess
}

// outputMbox renders messages in mbox format.
// It is used by match subcommand.
func outputMbox(ctx context.Context, headers []*client.MessageHeader) error {
	mw := mbox.NewWriter(os.Stdout)
	for _, h := range headers {
		source, err := h.GetSource(ctx)
		if err != nil {
			return fmt.Errorf("get source REST failed: %v", err)
		}
		from := envelopeSender(h.From)
		if from == "" {
			from = "MAILER-DAEMON"
		}
		w, err := mw.CreateMessage(from, model.Time(h.Timestamp))
		if err != nil {
			return err
		}
		if _, err := source.WriteTo(w); err != nil {
			return err
		}
	}
	return mw.Close()
}
