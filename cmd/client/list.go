package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/instanttempmail/tempmail/pkg/rest/model"
)

type listCmd struct{}

func (*listCmd) Name() string {
	return "list"
}

func (*listCmd) Synopsis() string {
	return "list contents of mailbox"
}

func (*listCmd) Usage() string {
	return `list <mailbox>:
	list messages in mailbox, oldest first; unread messages are marked with *
`
}

func (l *listCmd) SetFlags(f *flag.FlagSet) {}

func (l *listCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	mailbox := f.Arg(0)
	if mailbox == "" {
		return usage("mailbox required")
	}

	// Setup rest client
	c, err := newClient()
	if err != nil {
		return fatal("Couldn't build client", err)
	}

	// Get list
	ib, err := c.GetInbox(ctx, mailbox)
	if err != nil {
		return fatal("REST call failed", err)
	}
	for _, h := range ib.Headers() {
		mark := " "
		if !h.Read {
			mark = "*"
		}
		fmt.Printf("%s %-4s %s  %-30s %s\n", mark, h.ID,
			model.Time(h.Timestamp).Format("15:04:05"), h.From, h.Subject)
	}

	return subcommands.ExitSuccess
}
