package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type showCmd struct {
	source bool
	keep   bool
}

func (*showCmd) Name() string {
	return "show"
}

func (*showCmd) Synopsis() string {
	return "display a message"
}

func (*showCmd) Usage() string {
	return `show [flags] <mailbox> <id>:
	display the headers and text body of a message, and select it
`
}

func (s *showCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&s.source, "source", false, "output raw message source")
	f.BoolVar(&s.keep, "keep", false, "do not select the message or mark it read")
}

func (s *showCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	mailbox, id := f.Arg(0), f.Arg(1)
	if mailbox == "" || id == "" {
		return usage("mailbox and id required")
	}
	c, err := newClient()
	if err != nil {
		return fatal("Couldn't build client", err)
	}

	if s.source {
		source, err := c.GetMessageSource(ctx, mailbox, id)
		if err != nil {
			return fatal("REST call failed", err)
		}
		if _, err := source.WriteTo(os.Stdout); err != nil {
			return fatal("Error", err)
		}
		return subcommands.ExitSuccess
	}

	get := c.SelectMessage
	if s.keep {
		get = c.GetMessage
	}
	msg, err := get(ctx, mailbox, id)
	if err != nil {
		return fatal("REST call failed", err)
	}
	fmt.Printf("From:    %s\n", msg.From)
	fmt.Printf("Subject: %s\n", msg.Subject)
	for _, a := range msg.Attachments {
		fmt.Printf("Attach:  %s (%d bytes)\n", a.FileName, a.Size)
	}
	fmt.Printf("\n%s\n", msg.Body)
	return subcommands.ExitSuccess
}
