package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/matheus3301/wppview/internal/api"
	"github.com/matheus3301/wppview/internal/config"
	"github.com/matheus3301/wppview/internal/search"
	"github.com/matheus3301/wppview/internal/session"
	"github.com/olekukonko/tablewriter"
)

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	limitFlag := flag.Int("limit", 0, "page size (0 = daemon default)")
	beforeFlag := flag.Int64("before", 0, "only records older than this unix ms timestamp")
	beforeIDFlag := flag.Int64("before-id", 0, "with --before, also records at that timestamp with a lower id")
	flag.Parse()

	cfg, err := config.LoadOrDefault(session.ConfigPath())
	if err != nil {
		fail(err)
	}
	sessionName := session.Resolve(*sessionFlag, cfg)
	if err := session.ValidateName(sessionName); err != nil {
		fail(err)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	c, err := api.Dial(session.For(sessionName).Socket())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot connect to daemon for session %q: %v\n", sessionName, err)
		os.Exit(1)
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch args[0] {
	case "chats":
		resp, err := c.ListChats(ctx, api.ListChatsRequest{Limit: *limitFlag})
		if err != nil {
			fail(err)
		}
		if *jsonFlag {
			outputJSON(resp)
			return
		}
		table := newTable("JID", "Kind", "Name", "Last")
		for _, ch := range resp.Chats {
			last := ""
			if ch.LastMessageAt > 0 {
				last = time.UnixMilli(ch.LastMessageAt).Format("02/01/2006 15:04")
			}
			table.Append([]string{ch.JID, ch.Namespace, ch.Name, last})
		}
		table.Render()
	case "buckets":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: wppviewctl buckets <chat-jid>")
			os.Exit(1)
		}
		resp, err := c.ListBuckets(ctx, api.ListBucketsRequest{ChatJID: args[1], BeforeTs: *beforeFlag, BeforeID: *beforeIDFlag, Limit: *limitFlag})
		if err != nil {
			fail(err)
		}
		if *jsonFlag {
			outputJSON(resp)
			return
		}
		printBuckets(resp.Buckets)
		if resp.NextBeforeTs != 0 {
			fmt.Printf("\nolder: --before %d --before-id %d\n", resp.NextBeforeTs, resp.NextBeforeID)
		}
	case "search":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: wppviewctl search <chat-jid> <query>")
			os.Exit(1)
		}
		query := strings.Join(args[2:], " ")
		resp, err := c.Search(ctx, api.SearchRequest{ChatJID: args[1], Query: query, Limit: *limitFlag})
		if err != nil {
			fail(err)
		}
		if *jsonFlag {
			outputJSON(resp)
			return
		}
		printHits(resp.Hits, search.New(cfg.Marker()))
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: wppviewctl [--session <name>] [--json] [--limit n] [--before ms --before-id n] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  chats                     List stored chats")
	fmt.Fprintln(os.Stderr, "  buckets <chat>            Show a chat page grouped by day")
	fmt.Fprintln(os.Stderr, "  search <chat> <query>     Show messages matching query")
}

func printBuckets(buckets []api.Bucket) {
	for _, b := range buckets {
		fmt.Printf("── %s ──\n", b.Label)
		for _, m := range b.Messages {
			fmt.Printf("  %s  %-28s %s\n", clock(m.Timestamp), m.From, m.Text)
		}
	}
}

// printHits shows matches in brackets.
func printHits(hits []api.Message, engine search.Engine) {
	table := newTable("Day", "Time", "From", "Message")
	for _, h := range hits {
		var b strings.Builder
		for _, seg := range engine.Segments(h.Highlighted) {
			if seg.Match {
				b.WriteString("[" + seg.Text + "]")
			} else {
				b.WriteString(seg.Text)
			}
		}
		table.Append([]string{h.Label, clock(h.Timestamp), h.From, b.String()})
	}
	table.Render()
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

func clock(ms int64) string {
	return time.UnixMilli(ms).Format("15:04")
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
