package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/instanttempmail/tempmail/pkg/rest/client"
)

type newCmd struct{}

func (*newCmd) Name() string {
	return "new"
}

func (*newCmd) Synopsis() string {
	return "open an inbox with a generated address"
}

func (*newCmd) Usage() string {
	return `new:
	open an inbox and print its address
`
}

func (*newCmd) SetFlags(f *flag.FlagSet) {}

func (*newCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	c, err := newClient()
	if err != nil {
		return fatal("Couldn't build client", err)
	}
	ib, err := c.NewInbox(ctx)
	if err != nil {
		return fatal("REST call failed", err)
	}
	printInbox(ib)
	return subcommands.ExitSuccess
}

type ttlCmd struct{}

func (*ttlCmd) Name() string {
	return "ttl"
}

func (*ttlCmd) Synopsis() string {
	return "show or change the inbox TTL"
}

func (*ttlCmd) Usage() string {
	return `ttl <mailbox> [10m|1h|6h|24h]:
	without a TTL, list the TTL options; otherwise change the TTL of mailbox
`
}

func (*ttlCmd) SetFlags(f *flag.FlagSet) {}

func (*ttlCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	mailbox := f.Arg(0)
	if mailbox == "" {
		return usage("mailbox required")
	}
	c, err := newClient()
	if err != nil {
		return fatal("Couldn't build client", err)
	}
	ttl := f.Arg(1)
	if ttl == "" {
		ib, err := c.GetInbox(ctx, mailbox)
		if err != nil {
			return fatal("REST call failed", err)
		}
		opts, err := c.TTLOptions(ctx)
		if err != nil {
			return fatal("REST call failed", err)
		}
		for _, o := range opts {
			mark := " "
			if o.Name == ib.TTL {
				mark = "*"
			}
			fmt.Printf("%s %-4s %s\n", mark, o.Name, o.Label)
		}
		return subcommands.ExitSuccess
	}
	ib, err := c.SetTTL(ctx, mailbox, ttl)
	if err != nil {
		return fatal("REST call failed", err)
	}
	printInbox(ib)
	return subcommands.ExitSuccess
}

type rotateCmd struct{}

func (*rotateCmd) Name() string {
	return "rotate"
}

func (*rotateCmd) Synopsis() string {
	return "replace an inbox with a new address"
}

func (*rotateCmd) Usage() string {
	return `rotate <mailbox>:
	close mailbox, discarding its messages, and open a new one with the same TTL
`
}

func (*rotateCmd) SetFlags(f *flag.FlagSet) {}

func (*rotateCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	mailbox := f.Arg(0)
	if mailbox == "" {
		return usage("mailbox required")
	}
	c, err := newClient()
	if err != nil {
		return fatal("Couldn't build client", err)
	}
	ib, err := c.RotateInbox(ctx, mailbox)
	if err != nil {
		return fatal("REST call failed", err)
	}
	printInbox(ib)
	return subcommands.ExitSuccess
}

func printInbox(ib *client.Inbox) {
	fmt.Printf("%s (ttl %s)\n", ib.Address, ib.TTL)
}
