package notification

import (
	"context"
	"sort"
)

// Recipient is a resolved user with their Zalo preferences.
type Recipient struct {
	UserID           int64
	ZaloID           *string
	ZaloNotification bool
}

// Directory expands targets into active users.
type Directory interface {
	Recipients(ctx context.Context, targets []Target) ([]Recipient, error)
}

type Planner struct {
	directory Directory
}

func NewPlanner(directory Directory) *Planner {
	return &Planner{directory: directory}
}

// Plan builds one command per distinct recipient, ordered by user id.
func (p *Planner) Plan(ctx context.Context, meeting MeetingInfo, targets []Target, t Type) ([]Command, error) {
	if len(targets) == 0 {
		return nil, nil
	}

	recipients, err := p.directory.Recipients(ctx, targets)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(recipients))
	message := Message(t, meeting)
	commands := make([]Command, 0, len(recipients))
	for _, r := range recipients {
		if seen[r.UserID] {
			continue
		}
		seen[r.UserID] = true

		cmd := Command{
			MeetingID: meeting.ID,
			UserID:    r.UserID,
			Type:      t,
			Message:   message,
		}
		if r.ZaloNotification && r.ZaloID != nil && *r.ZaloID != "" {
			zalo := *r.ZaloID
			cmd.ZaloID = &zalo
		}
		commands = append(commands, cmd)
	}

	sort.Slice(commands, func(i, j int) bool { return commands[i].UserID < commands[j].UserID })
	return commands, nil
}
