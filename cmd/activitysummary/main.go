// Command activitysummary condenses the jobtracker activity log (one JSON
// object per committed cell) into per-session and per-application counts.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/jessevdk/go-flags"
)

type cliOptions struct {
	In    string `long:"in" required:"true" description:"activity log path"`
	Out   string `long:"out" description:"output JSON path (defaults to stdout)"`
	Since string `long:"since" description:"ignore events before this date or time"`
	Table string `long:"table" description:"only count events of this table"`
}

type activityRecord struct {
	SessionID   string    `json:"session_id"`
	User        string    `json:"user"`
	Timestamp   time.Time `json:"timestamp"`
	Event       string    `json:"event"`
	Table       string    `json:"table"`
	Application int       `json:"application"`
	Item        string    `json:"item"`
	Column      string    `json:"column"`
}

type columnCount struct {
	Column  string `json:"column"`
	Commits int    `json:"commits"`
}

type sessionSummary struct {
	SessionID string        `json:"session_id"`
	User      string        `json:"user,omitempty"`
	Start     time.Time     `json:"start"`
	End       time.Time     `json:"end"`
	Commits   int           `json:"commits"`
	Adds      int           `json:"adds"`
	Deletes   int           `json:"deletes"`
	Columns   []columnCount `json:"columns"`
}

type applicationCount struct {
	Application int `json:"application"`
	Events      int `json:"events"`
}

type report struct {
	Source       string             `json:"source"`
	Since        *time.Time         `json:"since,omitempty"`
	Events       int                `json:"events"`
	Skipped      int                `json:"skipped_lines"`
	Sessions     []sessionSummary   `json:"sessions"`
	Applications []applicationCount `json:"applications"`
}

type filter struct {
	since time.Time
	table string
}

func main() {
	var opts cliOptions
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	var f filter
	if s := strings.TrimSpace(opts.Since); s != "" {
		t, err := dateparse.ParseLocal(s)
		if err != nil {
			exit(fmt.Errorf("parse --since: %w", err))
		}
		f.since = t
	}
	f.table = strings.TrimSpace(opts.Table)

	file, err := os.Open(opts.In)
	if err != nil {
		exit(err)
	}
	defer file.Close()

	rep, err := summarize(file, f)
	if err != nil {
		exit(fmt.Errorf("read activity: %w", err))
	}
	rep.Source = opts.In

	encoded, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		exit(fmt.Errorf("encode report: %w", err))
	}
	if opts.Out == "" {
		fmt.Println(string(encoded))
		return
	}
	if err := os.WriteFile(opts.Out, append(encoded, '\n'), 0o644); err != nil {
		exit(fmt.Errorf("write output: %w", err))
	}
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "activitysummary: %v\n", err)
	os.Exit(1)
}

// summarize reads JSON lines from r. Lines that do not decode are counted
// and skipped.
func summarize(r io.Reader, f filter) (*report, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	rep := &report{}
	if !f.since.IsZero() {
		since := f.since
		rep.Since = &since
	}
	sessions := map[string]*sessionSummary{}
	columns := map[string]map[string]int{}
	apps := map[int]int{}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec activityRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil || rec.SessionID == "" {
			rep.Skipped++
			continue
		}
		if !f.since.IsZero() && rec.Timestamp.Before(f.since) {
			continue
		}
		if f.table != "" && rec.Table != f.table {
			continue
		}
		rep.Events++
		apps[rec.Application]++

		s, ok := sessions[rec.SessionID]
		if !ok {
			s = &sessionSummary{SessionID: rec.SessionID, User: rec.User, Start: rec.Timestamp, End: rec.Timestamp}
			sessions[rec.SessionID] = s
			columns[rec.SessionID] = map[string]int{}
		}
		if rec.Timestamp.Before(s.Start) {
			s.Start = rec.Timestamp
		}
		if rec.Timestamp.After(s.End) {
			s.End = rec.Timestamp
		}
		switch rec.Event {
		case "add":
			s.Adds++
		case "delete":
			s.Deletes++
		default:
			s.Commits++
			columns[rec.SessionID][rec.Column]++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for id, s := range sessions {
		for col, n := range columns[id] {
			s.Columns = append(s.Columns, columnCount{Column: col, Commits: n})
		}
		sort.Slice(s.Columns, func(i, j int) bool {
			if s.Columns[i].Commits != s.Columns[j].Commits {
				return s.Columns[i].Commits > s.Columns[j].Commits
			}
			return s.Columns[i].Column < s.Columns[j].Column
		})
		rep.Sessions = append(rep.Sessions, *s)
	}
	sort.Slice(rep.Sessions, func(i, j int) bool {
		return rep.Sessions[i].Start.Before(rep.Sessions[j].Start)
	})
	for app, n := range apps {
		rep.Applications = append(rep.Applications, applicationCount{Application: app, Events: n})
	}
	sort.Slice(rep.Applications, func(i, j int) bool {
		if rep.Applications[i].Events != rep.Applications[j].Events {
			return rep.Applications[i].Events > rep.Applications[j].Events
		}
		return rep.Applications[i].Application < rep.Applications[j].Application
	})
	return rep, nil
}
