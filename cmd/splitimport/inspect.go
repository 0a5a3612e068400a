package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/mmynk/splitwiser-import/internal/config"
	"github.com/mmynk/splitwiser-import/internal/models"
	"github.com/mmynk/splitwiser-import/internal/service"
	"github.com/mmynk/splitwiser-import/pkg/money"
)

type participantLookup func(id string) (models.Participant, bool)

func participantName(lookup participantLookup, id string) string {
	if p, ok := lookup(id); ok {
		return p.Name
	}
	return id
}

func runInspect(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	groupID := fs.String("group-id", "", "Imported group ID (required)")
	dbPath := dbFlag(fs, cfg)
	fs.Parse(args)

	if *groupID == "" {
		fs.Usage()
		return errors.New("-group-id is required")
	}

	store, err := openStore(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	balances, err := service.NewGroupService(store).GetGroupBalances(context.Background(), *groupID)
	if err != nil {
		return err
	}

	l := balances.Ledger
	currency := l.Group.Currency
	fmt.Printf("Group %q (%s), %d expenses\n\n", l.Group.Name, l.Group.ID, len(l.Expenses))

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTITLE\tAMOUNT\tPAID BY\tSPLIT\tFOR")
	for _, e := range l.Expenses {
		var forWhom []string
		for _, a := range l.AllocationsFor(e.ID) {
			name := participantName(l.ParticipantByID, a.ParticipantID)
			if a.Shares != nil {
				name = fmt.Sprintf("%s (%s)", name, money.Format(*a.Shares, currency))
			}
			forWhom = append(forWhom, name)
		}
		split := string(e.SplitMode)
		if e.IsReimbursement {
			split = "PAYMENT"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%v\n",
			e.ExpenseDate.Format("2006-01-02"), e.Title, money.Format(e.Amount, currency),
			participantName(l.ParticipantByID, e.PaidByID), split, forWhom)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	printBalances(os.Stdout, currency, balances.Members, balances.Debts, l.ParticipantByID)
	return nil
}

func runGroups(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("groups", flag.ExitOnError)
	dbPath := dbFlag(fs, cfg)
	fs.Parse(args)

	store, err := openStore(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	groups, err := service.NewGroupService(store).ListGroups(context.Background())
	if err != nil {
		return err
	}
	for _, g := range groups {
		fmt.Printf("%s  %s  %s\n", g.ID, g.Currency, g.Name)
	}
	return nil
}

func runCategories(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("categories", flag.ExitOnError)
	dbPath := dbFlag(fs, cfg)
	fs.Parse(args)

	store, err := openStore(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	categories, err := store.ListCategories(context.Background())
	if err != nil {
		return err
	}
	for _, c := range categories {
		fmt.Printf("%3d  %s\n", c.ID, c.Name)
	}
	return nil
}
