// pack-repl is an interactive shell around a single packed container.
//
// Usage:
//
//	pack-repl [-tracker btree|skiplist] [-capacity N]
//
// Commands (in REPL):
//
//	insert <text>            Store a value, prints its handle
//	get <handle>             Resolve a handle
//	set <handle> <text>      Overwrite the value behind a handle
//	remove <handle>          Remove the value behind a handle
//	contains <handle>        Check whether a handle is live
//	list [limit]             List live values in slot order
//	len                      Count live values
//	cap                      Show storage capacity
//	clear                    Remove every value
//	bulk <count>             Insert N generated values
//	bench <count>            Benchmark insert+get+remove cycles
//	help                     Show this help
//	exit / quit / q          Exit
//
// Handles are printed as index@generation and as a packed hex key; both
// forms are accepted back.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/plus3/pack/packed"
	"github.com/plus3/pack/packed/holes"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	tracker := flag.String("tracker", "btree", "hole tracker backend (btree or skiplist)")
	capacity := flag.Int("capacity", 1024, "capacity hint for the hole tracker")
	flag.Parse()

	var data *packed.Data[string]

	switch *tracker {
	case "btree":
		data = packed.New[string](*capacity)
	case "skiplist":
		data = packed.NewWithTracker[string](holes.NewSkipList())
	default:
		return fmt.Errorf("unknown tracker %q (want btree or skiplist)", *tracker)
	}

	repl := &REPL{data: data, tracker: *tracker}

	return repl.Run()
}

// REPL is the interactive command loop.
type REPL struct {
	data    *packed.Data[string]
	tracker string
	liner   *liner.State
}

// historyFile returns the path to the history file.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".pack_repl_history")
}

// Run starts the REPL loop.
func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("pack-repl - packed container shell (tracker=%s)\n", r.tracker)
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("pack> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("\nBye!")

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")

			r.saveHistory()

			return nil

		case "help", "?":
			r.printHelp()

		case "insert", "put", "add":
			r.cmdInsert(args)

		case "get":
			r.cmdGet(args)

		case "set":
			r.cmdSet(args)

		case "remove", "del", "rm":
			r.cmdRemove(args)

		case "contains", "has":
			r.cmdContains(args)

		case "list", "ls", "scan":
			r.cmdList(args)

		case "len", "count":
			fmt.Printf("Live values: %d\n", r.data.Len())

		case "cap", "capacity":
			fmt.Printf("Capacity: %d slots\n", r.data.Capacity())

		case "clear":
			r.cmdClear()

		case "bulk":
			r.cmdBulk(args)

		case "bench":
			r.cmdBench(args)

		case "cls":
			fmt.Print("\033[H\033[2J")

		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()

	return nil
}

// saveHistory persists command history to disk.
func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

// completer provides tab completion for commands.
func (r *REPL) completer(line string) []string {
	commands := []string{
		"insert", "put", "add",
		"get", "set", "remove", "del", "rm",
		"contains", "has", "list", "ls", "scan",
		"len", "count", "cap", "capacity",
		"clear", "bulk", "bench", "cls",
		"help", "exit", "quit", "q",
	}

	var completions []string

	lower := strings.ToLower(line)
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}

func (r *REPL) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  insert <text>            Store a value, prints its handle")
	fmt.Println("  get <handle>             Resolve a handle")
	fmt.Println("  set <handle> <text>      Overwrite the value behind a handle")
	fmt.Println("  remove <handle>          Remove the value behind a handle")
	fmt.Println("  contains <handle>        Check whether a handle is live")
	fmt.Println("  list [limit]             List live values in slot order")
	fmt.Println("  len                      Count live values")
	fmt.Println("  cap                      Show storage capacity")
	fmt.Println("  clear                    Remove every value")
	fmt.Println("  bulk <count>             Insert N generated values")
	fmt.Println("  bench <count>            Benchmark insert+get+remove cycles")
	fmt.Println("  help                     Show this help")
	fmt.Println("  exit / quit / q          Exit")
	fmt.Println()
	fmt.Println("Handles: index@generation (e.g. '3@1') or the packed hex key")
	fmt.Println("         printed at insert time (e.g. '0x300000001').")
}

// parseHandle accepts the two printed handle forms.
func parseHandle(s string) (packed.Item[string], error) {
	if index, generation, found := strings.Cut(s, "@"); found {
		idx, err := strconv.Atoi(index)
		if err != nil {
			return packed.Item[string]{}, fmt.Errorf("bad index %q", index)
		}

		gen, err := strconv.ParseUint(generation, 10, 32)
		if err != nil {
			return packed.Item[string]{}, fmt.Errorf("bad generation %q", generation)
		}

		return packed.ItemFromKey[string](uint64(uint32(idx))<<32 | gen), nil
	}

	key, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return packed.Item[string]{}, fmt.Errorf("bad handle %q", s)
	}

	return packed.ItemFromKey[string](key), nil
}

func formatHandle(it packed.Item[string]) string {
	return fmt.Sprintf("%d@%d (key=%#x)", it.Index(), it.Generation(), it.Key())
}

func (r *REPL) cmdInsert(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: insert <text>")

		return
	}

	it := r.data.Insert(strings.Join(args, " "))
	fmt.Printf("OK: stored at %s\n", formatHandle(it))
}

func (r *REPL) cmdGet(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: get <handle>")

		return
	}

	it, err := parseHandle(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	value, ok := r.data.Lookup(it)
	if !ok {
		fmt.Println("(not stored)")

		return
	}

	fmt.Printf("%s = %q\n", formatHandle(it), *value)
}

func (r *REPL) cmdSet(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: set <handle> <text>")

		return
	}

	it, err := parseHandle(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	value, ok := r.data.Lookup(it)
	if !ok {
		fmt.Println("(not stored)")

		return
	}

	*value = strings.Join(args[1:], " ")
	fmt.Printf("OK: %s = %q\n", formatHandle(it), *value)
}

func (r *REPL) cmdRemove(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: remove <handle>")

		return
	}

	it, err := parseHandle(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	if !r.data.Contains(it) {
		fmt.Println("(not stored)")

		return
	}

	value := r.data.Remove(it)
	fmt.Printf("OK: removed %q, slot %d is free for reuse\n", value, it.Index())
}

func (r *REPL) cmdContains(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: contains <handle>")

		return
	}

	it, err := parseHandle(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	fmt.Printf("%v\n", r.data.Contains(it))
}

func (r *REPL) cmdList(args []string) {
	limit := 20

	if len(args) >= 1 {
		var err error

		limit, err = strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("Error parsing limit: %v\n", err)

			return
		}
	}

	if r.data.IsEmpty() {
		fmt.Println("(empty)")

		return
	}

	shown := 0
	for it, value := range r.data.All() {
		if shown >= limit {
			fmt.Printf("... (showing first %d of %d, use 'list <limit>' for more)\n", limit, r.data.Len())

			break
		}

		fmt.Printf("%3d. %s = %q\n", shown+1, formatHandle(it), *value)
		shown++
	}
}

func (r *REPL) cmdClear() {
	removed := r.data.Len()
	r.data.Clear()
	fmt.Printf("OK: removed %d values, capacity %d retained\n", removed, r.data.Capacity())
}

func (r *REPL) cmdBulk(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: bulk <count>")

		return
	}

	count, err := strconv.Atoi(args[0])
	if err != nil || count < 1 {
		fmt.Printf("Error: count must be a positive integer\n")

		return
	}

	start := time.Now()

	first := r.data.Insert("bulk-0")
	for i := 1; i < count; i++ {
		r.data.Insert(fmt.Sprintf("bulk-%d", i))
	}

	elapsed := time.Since(start)
	rate := float64(count) / elapsed.Seconds()
	fmt.Printf("OK: inserted %d values in %v (%.0f ops/sec), first at %s\n",
		count, elapsed.Round(time.Millisecond), rate, formatHandle(first))
}

func (r *REPL) cmdBench(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: bench <count>")

		return
	}

	count, err := strconv.Atoi(args[0])
	if err != nil || count < 1 {
		fmt.Printf("Error: count must be a positive integer\n")

		return
	}

	fmt.Printf("Benchmarking %d cycles...\n", count)

	start := time.Now()
	for i := range count {
		it := r.data.Insert(strconv.Itoa(i))
		_ = *r.data.Get(it)
		r.data.Remove(it)
	}

	elapsed := time.Since(start)
	rate := float64(count) / elapsed.Seconds()
	fmt.Printf("  Cycles: %d in %v (%.0f cycles/sec)\n",
		count, elapsed.Round(time.Millisecond), rate)
}
