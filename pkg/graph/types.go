package graph

import (
	"time"

	"github.com/graphql-go/graphql"

	"github.com/code-gritt/klientel/pkg/export"
	"github.com/code-gritt/klientel/pkg/store"
)

// DTOs returned by resolvers. Field resolution relies on the json tags, so
// they mirror the schema's camelCase names exactly.

type userDTO struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	Credits   int    `json:"credits"`
	CreatedAt string `json:"createdAt"`
}

type leadDTO struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

type tagDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type noteDTO struct {
	ID        int    `json:"id"`
	LeadID    int    `json:"leadId"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

type activityDTO struct {
	ID        int    `json:"id"`
	Action    string `json:"action"`
	CreatedAt string `json:"createdAt"`
}

type teamDTO struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

type memberDTO struct {
	ID         int     `json:"id"`
	TeamID     int     `json:"teamId"`
	UserID     int     `json:"userId"`
	Role       string  `json:"role"`
	InvitedAt  string  `json:"invitedAt"`
	AcceptedAt *string `json:"acceptedAt"`
}

func toMemberDTO(m store.TeamMember) memberDTO {
	dto := memberDTO{
		ID:        m.ID,
		TeamID:    m.TeamID,
		UserID:    m.UserID,
		Role:      m.Role,
		InvitedAt: ts(m.InvitedAt),
	}
	if m.JoinedAt != nil {
		joined := ts(*m.JoinedAt)
		dto.AcceptedAt = &joined
	}
	return dto
}

type inviteDTO struct {
	ID        string `json:"id"`
	TeamID    int    `json:"teamId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expiresAt"`
}

type commentDTO struct {
	ID        int    `json:"id"`
	LeadID    int    `json:"leadId"`
	UserID    int    `json:"userId"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

type reportDTO struct {
	FileContent string `json:"fileContent"`
	FileType    string `json:"fileType"`
	FileName    string `json:"fileName"`
}

type authPayload struct {
	User        userDTO `json:"user"`
	AccessToken string  `json:"accessToken"`
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toUserDTO(u store.User) userDTO {
	return userDTO{ID: u.ID, Email: u.Email, Credits: u.Credits, CreatedAt: ts(u.CreatedAt)}
}

func toLeadDTO(l store.Lead) leadDTO {
	return leadDTO{ID: l.ID, Name: l.Name, Email: l.Email, Status: l.Status, CreatedAt: ts(l.CreatedAt)}
}

func toLeadDTOs(rows []store.Lead) []leadDTO {
	out := make([]leadDTO, len(rows))
	for i, l := range rows {
		out[i] = toLeadDTO(l)
	}
	return out
}

func toTagDTOs(rows []store.Tag) []tagDTO {
	out := make([]tagDTO, len(rows))
	for i, t := range rows {
		out[i] = tagDTO{ID: t.ID, Name: t.Name}
	}
	return out
}

func toNoteDTOs(rows []store.Note) []noteDTO {
	out := make([]noteDTO, len(rows))
	for i, n := range rows {
		out[i] = noteDTO{ID: n.ID, LeadID: n.LeadID, Content: n.Content, CreatedAt: ts(n.CreatedAt)}
	}
	return out
}

func toReportDTO(result *export.Result, encoded string) reportDTO {
	return reportDTO{FileContent: encoded, FileType: result.MimeType, FileName: result.Filename}
}

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"email":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"credits":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"createdAt": &graphql.Field{Type: graphql.String},
	},
})

var tagType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Tag",
	Fields: graphql.Fields{
		"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var leadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Lead",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"email":     &graphql.Field{Type: graphql.String},
		"status":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"createdAt": &graphql.Field{Type: graphql.String},
	},
})

var noteType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Note",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"leadId":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"content":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"createdAt": &graphql.Field{Type: graphql.String},
	},
})

var activityType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Activity",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"action":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"createdAt": &graphql.Field{Type: graphql.String},
	},
})

var teamType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Team",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"createdAt": &graphql.Field{Type: graphql.String},
	},
})

var memberType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TeamMember",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"teamId":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"userId":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"role":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"invitedAt":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"acceptedAt": &graphql.Field{Type: graphql.String},
	},
})

var inviteType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TeamInvite",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"teamId":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"email":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"role":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"expiresAt": &graphql.Field{Type: graphql.String},
	},
})

var commentType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Comment",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"leadId":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"userId":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"content":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"createdAt": &graphql.Field{Type: graphql.String},
	},
})

var pipelineMetricType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PipelineMetric",
	Fields: graphql.Fields{
		"status":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"leadCount":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"conversionRate": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"avgTimeInStage": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
	},
})

var reportType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Report",
	Fields: graphql.Fields{
		"fileContent": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"fileType":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"fileName":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var authPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuthPayload",
	Fields: graphql.Fields{
		"user":        &graphql.Field{Type: graphql.NewNonNull(userType)},
		"accessToken": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var leadPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "LeadPayload",
	Fields: graphql.Fields{
		"lead": &graphql.Field{Type: leadType},
	},
})

var tagPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TagPayload",
	Fields: graphql.Fields{
		"tag": &graphql.Field{Type: tagType},
	},
})

var notePayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "NotePayload",
	Fields: graphql.Fields{
		"note": &graphql.Field{Type: noteType},
	},
})

var teamPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TeamPayload",
	Fields: graphql.Fields{
		"team": &graphql.Field{Type: teamType},
	},
})

var invitePayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "InvitePayload",
	Fields: graphql.Fields{
		"invite": &graphql.Field{Type: inviteType},
	},
})

var memberPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "MemberPayload",
	Fields: graphql.Fields{
		"member": &graphql.Field{Type: memberType},
	},
})

var commentPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CommentPayload",
	Fields: graphql.Fields{
		"comment": &graphql.Field{Type: commentType},
	},
})

var successPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SuccessPayload",
	Fields: graphql.Fields{
		"success": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
	},
})

var chatbotPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ChatbotPayload",
	Fields: graphql.Fields{
		"response": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var reportPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ReportPayload",
	Fields: graphql.Fields{
		"report": &graphql.Field{Type: reportType},
	},
})

type successPayload struct {
	Success bool `json:"success"`
}

type chatbotPayload struct {
	Response string `json:"response"`
}
