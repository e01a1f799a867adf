package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/evento/internal/client/models"
)

var (
	errUsage       = errors.New("invalid arguments")
	errUnknownKind = errors.New("unknown collection")
)

// collections lists the kinds accepted by list, show and delete.
var collections = []string{"events", "blogs", "contacts", "users", "orders"}

func parseKind(args []string) (string, error) {
	if len(args) == 0 {
		return "", errUsage
	}
	kind := strings.ToLower(args[0])
	for _, c := range collections {
		if c == kind {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %s", errUnknownKind, args[0])
}

func (a *App) usage(text string) error {
	fmt.Fprintf(a.out, "Usage: %s (%s)\n", text, strings.Join(collections, "|"))
	return errUsage
}

// List prints one line per item of the collection named by args[0].
func (a *App) List(ctx context.Context, args []string) error {
	kind, err := parseKind(args)
	if err != nil {
		return a.usage("list <collection>")
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	switch kind {
	case "events":
		items, err := a.content.Events.List(ctx, nil)
		if err != nil {
			a.fail(ctx, "list events", err)
			return err
		}
		fmt.Fprintln(w, "ID\tTITLE\tDATE\tPRICE")
		for _, e := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n", e.ID, e.Title, e.Date, e.Price)
		}
	case "blogs":
		items, err := a.content.Blogs.List(ctx, nil)
		if err != nil {
			a.fail(ctx, "list blogs", err)
			return err
		}
		fmt.Fprintln(w, "ID\tTITLE\tAUTHOR")
		for _, b := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\n", b.ID, b.Title, b.Author)
		}
	case "contacts":
		items, err := a.content.Contacts.List(ctx, nil)
		if err != nil {
			a.fail(ctx, "list contacts", err)
			return err
		}
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSUBJECT")
		for _, c := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.Subject)
		}
	case "users":
		items, err := a.content.Users.List(ctx, nil)
		if err != nil {
			a.fail(ctx, "list users", err)
			return err
		}
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE")
		for _, u := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role)
		}
	case "orders":
		items, err := a.content.Orders.List(ctx, nil)
		if err != nil {
			a.fail(ctx, "list orders", err)
			return err
		}
		fmt.Fprintln(w, "ID\tEVENT\tEMAIL\tQTY\tTOTAL\tSTATUS")
		for _, o := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%s\n", o.ID, o.EventID, o.Email, o.Quantity, o.Total, o.Status)
		}
	}
	return w.Flush()
}

// Show prints a single item as indented JSON.
func (a *App) Show(ctx context.Context, args []string) error {
	kind, err := parseKind(args)
	if err != nil || len(args) < 2 {
		return a.usage("show <collection> <id>")
	}
	id := args[1]

	var item any
	switch kind {
	case "events":
		item, err = a.content.Events.Get(ctx, id)
	case "blogs":
		item, err = a.content.Blogs.Get(ctx, id)
	case "contacts":
		item, err = a.content.Contacts.Get(ctx, id)
	case "users":
		item, err = a.content.Users.Get(ctx, id)
	case "orders":
		item, err = a.content.Orders.Get(ctx, id)
	}
	if err != nil {
		a.fail(ctx, "show "+kind, err)
		return err
	}

	b, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, string(b))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	kind, err := parseKind(args)
	if err != nil || len(args) < 2 {
		return a.usage("delete <collection> <id>")
	}
	id := args[1]

	ok, err := getConfirm(a.reader, fmt.Sprintf("Delete %s %s?", strings.TrimSuffix(kind, "s"), id), false, a.out)
	if err != nil || !ok {
		return err
	}

	switch kind {
	case "events":
		err = a.content.Events.Delete(ctx, id)
	case "blogs":
		err = a.content.Blogs.Delete(ctx, id)
	case "contacts":
		err = a.content.Contacts.Delete(ctx, id)
	case "users":
		err = a.content.Users.Delete(ctx, id)
	case "orders":
		err = a.content.Orders.Delete(ctx, id)
	}
	if err != nil {
		a.fail(ctx, "delete "+kind, err)
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}

// AddEvent prompts for the event fields and creates it.
func (a *App) AddEvent(ctx context.Context) error {
	e := &models.Event{}
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Title", &e.Title},
		{"Category", &e.Category},
		{"Location", &e.Location},
		{"Date (YYYY-MM-DD)", &e.Date},
		{"Time (HH:MM)", &e.Time},
		{"Organizer", &e.Organizer},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	desc, err := getMultiline(a.reader, "Description", a.out)
	if err != nil {
		return err
	}
	e.Description = desc

	price, err := getSimpleText(a.reader, "Price", a.out)
	if err != nil {
		return err
	}
	if price != "" {
		if e.Price, err = strconv.ParseFloat(price, 64); err != nil {
			fmt.Fprintf(a.out, "Error: invalid price %q\n", price)
			return err
		}
	}
	seats, err := getSimpleText(a.reader, "Seats", a.out)
	if err != nil {
		return err
	}
	if seats != "" {
		if e.Seats, err = strconv.Atoi(seats); err != nil {
			fmt.Fprintf(a.out, "Error: invalid seats %q\n", seats)
			return err
		}
	}

	created, err := a.content.CreateEvent(ctx, e)
	if err != nil {
		a.fail(ctx, "create event", err)
		return err
	}
	fmt.Fprintf(a.out, "Event created, id: %s\n", created.ID)
	return nil
}

func (a *App) AddBlog(ctx context.Context) error {
	b := &models.Blog{}
	var err error
	if b.Title, err = getSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if b.Author, err = getSimpleText(a.reader, "Author", a.out); err != nil {
		return err
	}
	tags, err := getSimpleText(a.reader, "Tags (comma separated)", a.out)
	if err != nil {
		return err
	}
	for _, t := range strings.Split(tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			b.Tags = append(b.Tags, t)
		}
	}
	if b.Content, err = getMultiline(a.reader, "Content", a.out); err != nil {
		return err
	}

	created, err := a.content.CreateBlog(ctx, b)
	if err != nil {
		a.fail(ctx, "create blog", err)
		return err
	}
	fmt.Fprintf(a.out, "Blog created, id: %s\n", created.ID)
	return nil
}
