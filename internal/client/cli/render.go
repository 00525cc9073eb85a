package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/evote/internal/client/countdown"
	"github.com/dmitrijs2005/evote/internal/client/election"
	"github.com/dmitrijs2005/evote/internal/client/models"
	"github.com/dmitrijs2005/evote/internal/client/results"
	"github.com/dmitrijs2005/evote/internal/common"
	"github.com/dustin/go-humanize"
)

const barWidth = 20

func newTable(b *strings.Builder) *tabwriter.Writer {
	return tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
}

func renderElection(v election.View, remaining countdown.Remaining) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s election\n", v.ElectionType.Label())
	if remaining.IsZero() {
		b.WriteString("Voting has closed.\n")
	} else {
		fmt.Fprintf(&b, "Time left to vote: %s\n", remaining)
	}

	switch v.Phase {
	case election.PhaseLoading:
		b.WriteString("Loading...\n")
	case election.PhaseReady:
		renderTallies(&b, v.Tallies)
		renderCandidates(&b, v)
	}

	if v.Pending != nil {
		b.WriteString("\n" + renderConfirmation(v.ElectionType, *v.Pending) + "\n")
	}
	if v.Notice.Text != "" {
		b.WriteString("\n" + renderNotice(v.Notice) + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderTallies(b *strings.Builder, tallies []models.PartyTally) {
	if len(tallies) == 0 {
		return
	}
	b.WriteString("\nParty votes\n")
	tw := newTable(b)
	fmt.Fprintln(tw, "PARTY\tVOTES")
	for _, t := range tallies {
		fmt.Fprintf(tw, "%s\t%s\n", t.Party, results.Comma(t.Votes))
	}
	tw.Flush()
}

func renderCandidates(b *strings.Builder, v election.View) {
	fmt.Fprintf(b, "\nCandidates (page %d of %d", v.Page, v.TotalPages)
	if v.Query != "" {
		fmt.Fprintf(b, ", %d matching %q", v.Matches, v.Query)
	}
	b.WriteString(")\n")

	if len(v.Candidates) == 0 {
		if v.Query != "" {
			fmt.Fprintf(b, "No candidates match %q.\n", v.Query)
		} else {
			b.WriteString("No candidates.\n")
		}
		return
	}

	tw := newTable(b)
	fmt.Fprintln(tw, "ID\tNAME\tPARTY\tAGE\t")
	for _, c := range v.Candidates {
		mark := ""
		if v.Voted && c.ID == v.SelectedID {
			mark = "<- your vote"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", c.ID, c.Name, c.Party, c.Age, mark)
	}
	tw.Flush()

	switch {
	case v.Voted:
		b.WriteString("Your vote in this category has been recorded.\n")
	case v.VotingInFlight:
		b.WriteString("Submitting vote...\n")
	default:
		b.WriteString("Use 'vote <id>' to choose a candidate.\n")
	}
}

func renderConfirmation(t models.ElectionType, c models.Candidate) string {
	return fmt.Sprintf("Vote for %s (%s) in the %s election?\nType 'confirm' to submit or 'cancel' to go back.",
		c.Name, c.Party, t.Label())
}

func renderNotice(n election.Notice) string {
	if n.Kind == election.NoticeError {
		return "[error] " + n.Text
	}
	return "[ok] " + n.Text
}

func renderResults(v results.View) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s results\n", v.ElectionType.Label())
	if v.Loading {
		b.WriteString("Loading...")
		return b.String()
	}
	if v.Message != "" {
		b.WriteString(v.Message)
		return b.String()
	}

	s := v.Summary
	if !v.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "Last Updated: %s\n", v.UpdatedAt.Format(time.TimeOnly))
	}
	fmt.Fprintf(&b, "Total votes: %s\n", results.Comma(s.Total))
	if s.LeadingParty != "" {
		fmt.Fprintf(&b, "Leading party: %s\n", s.LeadingParty)
	}
	if s.LeadingCandidate != nil {
		fmt.Fprintf(&b, "Leading candidate: %s (%s)\n", s.LeadingCandidate.Name, s.LeadingCandidate.Party)
	}

	if len(s.Shares) == 0 {
		b.WriteString("\nNo votes recorded yet.")
		return b.String()
	}

	b.WriteString("\n")
	tw := newTable(&b)
	fmt.Fprintln(tw, "PARTY\tVOTES\tSHARE\t")
	for _, sh := range s.Shares {
		fmt.Fprintf(tw, "%s\t%s\t%.1f%%\t%s\n", sh.Party, results.ShortNumber(sh.Votes), sh.Percent, results.Bar(sh.Percent, barWidth))
	}
	tw.Flush()

	return strings.TrimRight(b.String(), "\n")
}

func renderTypes(current models.ElectionType) string {
	lines := make([]string, len(models.ElectionTypes))
	for i, t := range models.ElectionTypes {
		mark := " "
		if t == current {
			mark = "*"
		}
		lines[i] = fmt.Sprintf("%s %s", mark, t)
	}
	return strings.Join(lines, "\n")
}

func renderProfile(p models.Profile, expiry time.Time, known bool) string {
	var b strings.Builder

	photo := p.ProfilePic
	if photo == "" {
		photo = common.PlaceholderImage
	}
	expires := "unknown"
	if known {
		expires = fmt.Sprintf("%s (%s)", expiry.Local().Format(time.DateTime), humanize.Time(expiry))
	}

	tw := newTable(&b)
	fmt.Fprintf(tw, "Name:\t%s\n", p.FullName())
	fmt.Fprintf(tw, "National ID:\t%s\n", p.NationalID)
	fmt.Fprintf(tw, "Date of birth:\t%s\n", p.DateOfBirth)
	fmt.Fprintf(tw, "State:\t%s\n", p.State)
	fmt.Fprintf(tw, "LGA:\t%s\n", p.LGA)
	fmt.Fprintf(tw, "VIN:\t%s\n", p.VIN)
	fmt.Fprintf(tw, "Photo:\t%s\n", photo)
	fmt.Fprintf(tw, "Session expires:\t%s\n", expires)
	tw.Flush()

	return strings.TrimRight(b.String(), "\n")
}

func renderReceipts(list []models.Receipt) string {
	if len(list) == 0 {
		return "No votes recorded on this device."
	}

	var b strings.Builder
	tw := newTable(&b)
	fmt.Fprintln(tw, "WHEN\tELECTION\tCANDIDATE\tPARTY\tMESSAGE")
	for _, r := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", humanize.Time(r.CastAt), r.ElectionType.Label(), r.CandidateName, r.Party, r.Message)
	}
	tw.Flush()

	return strings.TrimRight(b.String(), "\n")
}

// helpText lists the commands that make sense on route.
func helpText(route Route, loggedIn bool) string {
	cmds := []string{"help", "home", "results"}
	if loggedIn {
		cmds = append(cmds, "election", "whoami", "receipts", "logout")
	} else {
		cmds = append(cmds, "login", "register")
	}

	switch route {
	case RouteElection:
		cmds = append(cmds, "types", "type <name>", "search <text>", "page <n>", "next", "prev",
			"vote <id>", "confirm", "cancel", "refresh")
	case RouteResults:
		cmds = append(cmds, "types", "type <name>", "refresh")
	}

	cmds = append(cmds, "exit")
	return "Available commands: " + strings.Join(cmds, ", ")
}
