package graph

import (
	"github.com/graphql-go/graphql"
)

// NewSchema assembles the GraphQL schema over the resolver's services.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me":              r.meField(),
			"leads":           r.leadsField(),
			"lead":            r.leadField(),
			"tags":            r.tagsField(),
			"leadTags":        r.leadTagsField(),
			"notes":           r.notesField(),
			"teams":           r.teamsField(),
			"teamMembers":     r.teamMembersField(),
			"comments":        r.commentsField(),
			"activities":      r.activitiesField(),
			"pipelineMetrics": r.pipelineMetricsField(),
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"register":          r.registerField(),
			"login":             r.loginField(),
			"logout":            r.logoutField(),
			"createLead":        r.createLeadField(),
			"updateLead":        r.updateLeadField(),
			"updateLeadStatus":  r.updateLeadStatusField(),
			"deleteLead":        r.deleteLeadField(),
			"createTag":         r.createTagField(),
			"deleteTag":         r.deleteTagField(),
			"assignTagToLead":   r.assignTagField(),
			"removeTagFromLead": r.removeTagField(),
			"createNote":        r.createNoteField(),
			"deleteNote":        r.deleteNoteField(),
			"createTeam":        r.createTeamField(),
			"inviteMember":      r.inviteMemberField(),
			"acceptInvite":      r.acceptInviteField(),
			"addComment":        r.addCommentField(),
			"sendEmail":         r.sendEmailField(),
			"chatbot":           r.chatbotField(),
			"exportReport":      r.exportReportField(),
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}
