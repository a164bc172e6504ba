package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
	"github.com/instanttempmail/tempmail/pkg/rest/model"
)

type analyzeCmd struct{}

func (*analyzeCmd) Name() string {
	return "analyze"
}

func (*analyzeCmd) Synopsis() string {
	return "rate the phishing risk of a message"
}

func (*analyzeCmd) Usage() string {
	return `analyze <mailbox> <id>:
	summarize a message, rate its phishing risk and print advice
`
}

func (*analyzeCmd) SetFlags(f *flag.FlagSet) {}

func (*analyzeCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	mailbox, id := f.Arg(0), f.Arg(1)
	if mailbox == "" || id == "" {
		return usage("mailbox and id required")
	}
	c, err := newClient()
	if err != nil {
		return fatal("Couldn't build client", err)
	}
	result, err := c.AnalyzeMessage(ctx, mailbox, id)
	if err != nil {
		return fatal("REST call failed", err)
	}
	fmt.Printf("Risk: %s\n", result.PhishingRisk)
	for _, s := range result.Summary {
		fmt.Printf("  - %s\n", s)
	}
	for _, s := range result.Suggestions {
		fmt.Println(s)
	}
	return subcommands.ExitSuccess
}

type suggestCmd struct{}

func (*suggestCmd) Name() string {
	return "suggest"
}

func (*suggestCmd) Synopsis() string {
	return "suggest usernames"
}

func (*suggestCmd) Usage() string {
	return `suggest:
	print six username suggestions
`
}

func (*suggestCmd) SetFlags(f *flag.FlagSet) {}

func (*suggestCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	c, err := newClient()
	if err != nil {
		return fatal("Couldn't build client", err)
	}
	names, err := c.Suggestions(ctx)
	if err != nil {
		return fatal("REST call failed", err)
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return subcommands.ExitSuccess
}

type chatCmd struct {
	mailbox string
	id      string
}

func (*chatCmd) Name() string {
	return "chat"
}

func (*chatCmd) Synopsis() string {
	return "ask the assistant"
}

func (*chatCmd) Usage() string {
	return `chat [flags] <prompt>:
	send prompt to the assistant, optionally about a message
`
}

func (ch *chatCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&ch.mailbox, "mailbox", "", "mailbox of the message to discuss")
	f.StringVar(&ch.id, "id", "", "ID of the message to discuss")
}

func (ch *chatCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	prompt := strings.Join(f.Args(), " ")
	if prompt == "" {
		return usage("prompt required")
	}
	if (ch.mailbox == "") != (ch.id == "") {
		return usage("-mailbox and -id must be used together")
	}
	c, err := newClient()
	if err != nil {
		return fatal("Couldn't build client", err)
	}
	var selected *model.JSONEmail
	if ch.id != "" {
		msg, err := c.GetMessage(ctx, ch.mailbox, ch.id)
		if err != nil {
			return fatal("REST call failed", err)
		}
		selected = msg.JSONEmail
	}
	reply, err := c.Chat(ctx, prompt, selected)
	if err != nil {
		return fatal("REST call failed", err)
	}
	fmt.Println(reply)
	return subcommands.ExitSuccess
}
