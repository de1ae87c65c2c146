package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"parley/internal/config"
	"parley/internal/directory"
	"parley/internal/lock"
	"parley/internal/profile"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	flag.Parse()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "contacts":
		cmdContacts(profileName)
	case "profiles":
		if len(args) >= 2 && args[1] == "list" {
			cmdProfilesList()
		} else {
			fmt.Fprintln(os.Stderr, "usage: parleyctl profiles list")
			os.Exit(1)
		}
	case "doctor":
		cmdDoctor(profileName)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: parleyctl [--profile <name>] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  contacts         List contacts in the profile directory")
	fmt.Fprintln(os.Stderr, "  profiles list    List known profiles")
	fmt.Fprintln(os.Stderr, "  doctor           Check profile health")
}

func newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func cmdContacts(profileName string) {
	if err := profile.EnsureDir(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	db, err := directory.Open(profile.DirectoryDBPath(profileName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	contacts, err := db.ListContacts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	table := newTable([]string{"ID", "Name", "Avatar", "Bubbles", "Reply Template"})
	for _, c := range contacts {
		bubbles := "no"
		if c.BubbleCapable {
			bubbles = "yes"
		}
		table.Append([]string{
			strconv.FormatInt(c.ID, 10),
			c.Name,
			c.Avatar,
			bubbles,
			c.ReplyTemplate,
		})
	}
	table.Render()
}

func cmdProfilesList() {
	entries, err := os.ReadDir(filepath.Join(profile.BaseDir(), "profiles"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("No profiles found.")
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && profile.ValidateName(e.Name()) == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		fmt.Println("No profiles found.")
		return
	}

	table := newTable([]string{"Name", "Path", "Status"})
	for _, name := range names {
		status := "idle"
		if l, err := lock.Acquire(profile.Dir(name)); err != nil {
			var held *lock.HeldError
			if errors.As(err, &held) {
				status = fmt.Sprintf("running (pid %d)", held.PID)
			} else {
				status = "unknown"
			}
		} else {
			_ = l.Release()
		}
		table.Append([]string{name, profile.Dir(name), status})
	}
	table.Render()
}

func cmdDoctor(profileName string) {
	failed := false
	check := func(name string, err error) {
		if err != nil {
			failed = true
			fmt.Printf("FAIL  %-24s %v\n", name, err)
			return
		}
		fmt.Printf("ok    %s\n", name)
	}

	check("profile dir", profile.EnsureDir(profileName))

	if _, err := config.Load(profile.ConfigPath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Printf("ok    %-24s (missing, defaults apply)\n", "config")
		} else {
			check("config", err)
		}
	} else {
		check("config", nil)
	}

	db, err := directory.Open(profile.DirectoryDBPath(profileName))
	check("directory db", err)
	if err == nil {
		defer func() { _ = db.Close() }()
		result, merr := db.Migrate()
		check("migrations", merr)
		if merr == nil {
			fmt.Printf("      schema version %d\n", result.Version)
		}
		contacts, lerr := db.ListContacts()
		check("contacts", lerr)
		if lerr == nil {
			fmt.Printf("      %d contacts seeded\n", len(contacts))
		}
	}

	if l, err := lock.Acquire(profile.Dir(profileName)); err != nil {
		var held *lock.HeldError
		if errors.As(err, &held) {
			fmt.Printf("ok    lock held by running client (pid %d)\n", held.PID)
		} else {
			check("lock", err)
		}
	} else {
		_ = l.Release()
		fmt.Println("ok    lock available")
	}

	if failed {
		os.Exit(1)
	}
}
