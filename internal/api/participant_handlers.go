package api

import (
	"context"
	"net/http"
	"slices"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/gdgscriet/studyjam-server/internal/errors"
	"github.com/gdgscriet/studyjam-server/internal/query"
	"github.com/gdgscriet/studyjam-server/internal/service"
)

func (s *Server) registerParticipantRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listParticipants",
		Method:      http.MethodGet,
		Path:        "/api/v1/participants",
		Summary:     "List participants",
		Description: "Filtered, sorted and numbered view of the current participant snapshot",
		Tags:        []string{"Participants"},
	}, s.handleListParticipants)

	huma.Register(s.api, huma.Operation{
		OperationID: "getParticipant",
		Method:      http.MethodGet,
		Path:        "/api/v1/participants/{id}",
		Summary:     "Get participant",
		Description: "Participant detail with badges split into skill badges and arcade games",
		Tags:        []string{"Participants"},
	}, s.handleGetParticipant)
}

// ParticipantQuery holds the filter and sort parameters shared by listing and export.
type ParticipantQuery struct {
	Redeemed   string `query:"redeemed" enum:"all,yes,no" doc:"Access code redemption filter"`
	ProgressOp string `query:"progress_op" doc:"Operator for progress: >=, <=, =, >, <"`
	Progress   string `query:"progress" doc:"Completion percentage threshold"`
	BadgesOp   string `query:"badges_op" doc:"Operator for completed badges"`
	Badges     string `query:"badges" doc:"Completed badge threshold"`
	Query      string `query:"q" maxLength:"200" doc:"Name substring; with an admin session also matches email"`
	Sort       string `query:"sort" doc:"Comma-separated sort keys, e.g. rank,-completion_percentage"`
}

// parse turns raw query parameters into a filter spec and sort keys. Only admins may
// search or sort by email.
func (q *ParticipantQuery) parse(admin bool) (query.FilterSpec, []query.SortKey, error) {
	spec, err := query.ParseFilter(query.FilterParams{
		Redeemed:   q.Redeemed,
		ProgressOp: q.ProgressOp,
		Progress:   q.Progress,
		BadgesOp:   q.BadgesOp,
		Badges:     q.Badges,
		Text:       q.Query,
	})
	if err != nil {
		return query.FilterSpec{}, nil, err
	}
	spec.MatchEmail = admin
	keys, err := query.ParseSort(q.Sort)
	if err != nil {
		return query.FilterSpec{}, nil, err
	}
	if !admin && slices.ContainsFunc(keys, func(k query.SortKey) bool { return k.Field == query.FieldEmail }) {
		return query.FilterSpec{}, nil, domainerrors.ValidationWithDetails("invalid sort",
			map[string]string{"sort": "email requires an admin session"})
	}
	return spec, keys, nil
}

// ListParticipantsOutput wraps the participant view for Huma.
type ListParticipantsOutput struct {
	Body *service.ParticipantView
}

func (s *Server) handleListParticipants(ctx context.Context, input *ParticipantQuery) (*ListParticipantsOutput, error) {
	admin := isAdmin(ctx)
	spec, keys, err := input.parse(admin)
	if err != nil {
		return nil, err
	}
	view, err := s.services.Dashboard.Participants(ctx, spec, keys)
	if err != nil {
		return nil, err
	}
	if !admin {
		view = view.WithoutEmails()
	}
	return &ListParticipantsOutput{Body: view}, nil
}

// GetParticipantInput identifies one participant.
type GetParticipantInput struct {
	ID string `path:"id" minLength:"1" maxLength:"64" doc:"Participant ID"`
}

// GetParticipantOutput wraps the participant detail for Huma.
type GetParticipantOutput struct {
	Body *service.ParticipantDetail
}

func (s *Server) handleGetParticipant(ctx context.Context, input *GetParticipantInput) (*GetParticipantOutput, error) {
	detail, err := s.services.Dashboard.Participant(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if !isAdmin(ctx) {
		detail = detail.WithoutEmail()
	}
	return &GetParticipantOutput{Body: detail}, nil
}
