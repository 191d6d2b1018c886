// Package datamodel lists the persisted row types.
package datamodel

import (
	"github.com/frahmantamala/meeting-manager/internal/core/datamodel/department"
	"github.com/frahmantamala/meeting-manager/internal/core/datamodel/meeting"
	"github.com/frahmantamala/meeting-manager/internal/core/datamodel/notification"
	"github.com/frahmantamala/meeting-manager/internal/core/datamodel/organization"
	"github.com/frahmantamala/meeting-manager/internal/core/datamodel/user"
)

// Models returns every row type in dependency order.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&user.UserProfile{},
		&department.Department{},
		&organization.Organization{},
		&user.UserAffiliation{},
		&meeting.MeetingSequence{},
		&meeting.Meeting{},
		&meeting.MeetingParticipant{},
		&meeting.MeetingFile{},
		&meeting.MeetingMinutes{},
		&notification.Notification{},
	}
}
