// Package handler exposes the resolver over a single HTTP query endpoint.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"tutor-central/internal/middleware"
	"tutor-central/internal/resolver"
	"tutor-central/internal/services"
	"tutor-central/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type operation func(ctx context.Context, vars json.RawMessage) (any, error)

// QueryHandler dispatches POST /v1/query to the resolver by operation name.
type QueryHandler struct {
	resolver       *resolver.Resolver
	maxUploadBytes int64
	operations     map[string]operation
}

func NewQueryHandler(r *resolver.Resolver, maxUploadBytes int64) *QueryHandler {
	h := &QueryHandler{resolver: r, maxUploadBytes: maxUploadBytes}
	h.operations = map[string]operation{
		httpdto.OpMe:             h.me,
		httpdto.OpUsers:          h.users,
		httpdto.OpUser:           h.user,
		httpdto.OpStudent:        h.student,
		httpdto.OpTutors:         h.tutors,
		httpdto.OpChat:           h.chat,
		httpdto.OpSignedLink:     h.signedLink,
		httpdto.OpAddStudent:     h.addStudent,
		httpdto.OpAddTutor:       h.addTutor,
		httpdto.OpLogin:          h.login,
		httpdto.OpUpdateUser:     h.updateUser,
		httpdto.OpCreateChat:     h.createChat,
		httpdto.OpAddMessage:     h.addMessage,
		httpdto.OpUpdatePassword: h.updatePassword,
	}
	return h
}

// Query handles both JSON operations and the multipart singleUpload.
func (h *QueryHandler) Query(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), binding.MIMEMultipartPOSTForm) {
		h.singleUpload(c)
		return
	}

	var req httpdto.QueryRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		writeError(c, "", badRequest("invalid request"))
		return
	}
	c.Set(middleware.OperationKey, req.Operation)

	op, ok := h.operations[req.Operation]
	if !ok {
		writeError(c, req.Operation, badRequest("unknown operation "+req.Operation))
		return
	}
	data, err := op(c.Request.Context(), req.Variables)
	if err != nil {
		writeError(c, req.Operation, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(req.Operation, data))
}

// decodeVariables unmarshals and validates the variables of an operation.
func decodeVariables[T any](raw json.RawMessage) (T, error) {
	var vars T
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, &vars); err != nil {
		return vars, badRequest("invalid variables")
	}
	if err := binding.Validator.ValidateStruct(&vars); err != nil {
		return vars, badRequest("invalid variables: " + err.Error())
	}
	return vars, nil
}

func (h *QueryHandler) me(ctx context.Context, _ json.RawMessage) (any, error) {
	p, err := h.resolver.Me(ctx)
	if err != nil {
		return nil, err
	}
	return httpdto.NewProfileDTO(p), nil
}

func (h *QueryHandler) users(ctx context.Context, _ json.RawMessage) (any, error) {
	list, err := h.resolver.Users(ctx)
	if err != nil {
		return nil, err
	}
	return httpdto.NewAccountDTOs(list), nil
}

func (h *QueryHandler) user(ctx context.Context, raw json.RawMessage) (any, error) {
	vars, err := decodeVariables[httpdto.UserVariables](raw)
	if err != nil {
		return nil, err
	}
	a, err := h.resolver.User(ctx, vars.Username)
	if err != nil {
		return nil, err
	}
	return httpdto.NewAccountDTO(a), nil
}

func (h *QueryHandler) student(ctx context.Context, raw json.RawMessage) (any, error) {
	vars, err := decodeVariables[httpdto.IDVariables](raw)
	if err != nil {
		return nil, err
	}
	v, err := h.resolver.Student(ctx, vars.ID)
	if err != nil {
		return nil, err
	}
	return httpdto.NewStudentDTO(v), nil
}

func (h *QueryHandler) tutors(ctx context.Context, _ json.RawMessage) (any, error) {
	list, err := h.resolver.Tutors(ctx)
	if err != nil {
		return nil, err
	}
	return httpdto.NewTutorDTOs(list), nil
}

func (h *QueryHandler) chat(ctx context.Context, raw json.RawMessage) (any, error) {
	vars, err := decodeVariables[httpdto.IDVariables](raw)
	if err != nil {
		return nil, err
	}
	v, err := h.resolver.Chat(ctx, vars.ID)
	if err != nil {
		return nil, err
	}
	return httpdto.NewChatViewDTO(v), nil
}

func (h *QueryHandler) signedLink(ctx context.Context, raw json.RawMessage) (any, error) {
	vars, err := decodeVariables[httpdto.SignedLinkVariables](raw)
	if err != nil {
		return nil, err
	}
	link, err := h.resolver.SignedLink(ctx, vars.Filename)
	if err != nil {
		return nil, err
	}
	return httpdto.NewSignedLinkDTO(link), nil
}

func signupInput(v httpdto.SignupVariables) services.SignupInput {
	return services.SignupInput{
		Username:   v.Username,
		Email:      v.Email,
		Password:   v.Password,
		FirstName:  v.FirstName,
		LastName:   v.LastName,
		Bio:        v.Bio,
		Subjects:   v.Subjects,
		HourlyRate: v.HourlyRate,
		GradeLevel: v.GradeLevel,
		Goals:      v.Goals,
	}
}

func (h *QueryHandler) addStudent(ctx context.Context, raw json.RawMessage) (any, error) {
	vars, err := decodeVariables[httpdto.SignupVariables](raw)
	if err != nil {
		return nil, err
	}
	p, err := h.resolver.AddStudent(ctx, signupInput(vars))
	if err != nil {
		return nil, err
	}
	return httpdto.NewAuthPayloadDTO(p), nil
}

func (h *QueryHandler) addTutor(ctx context.Context, raw json.RawMessage) (any, error) {
	vars, err := decodeVariables[httpdto.SignupVariables](raw)
	if err != nil {
		return nil, err
	}
	p, err := h.resolver.AddTutor(ctx, signupInput(vars))
	if err != nil {
		return nil, err
	}
	return httpdto.NewAuthPayloadDTO(p), nil
}

func (h *QueryHandler) login(ctx context.Context, raw json.RawMessage) (any, error) {
	vars, err := decodeVariables[httpdto.LoginVariables](raw)
	if err != nil {
		return nil, err
	}
	p, err := h.resolver.Login(ctx, vars.Email, vars.Password)
	if err != nil {
		return nil, err
	}
	return httpdto.NewAuthPayloadDTO(p), nil
}

func (h *QueryHandler) updateUser(ctx context.Context, raw json.RawMessage) (any, error) {
	vars, err := decodeVariables[httpdto.UpdateUserVariables](raw)
	if err != nil {
		return nil, err
	}
	a, err := h.resolver.UpdateUser(ctx, services.AccountUpdate{
		Username:  vars.Username,
		Email:     vars.Email,
		FirstName: vars.FirstName,
		LastName:  vars.LastName,
	})
	if err != nil {
		return nil, err
	}
	return httpdto.NewAccountDTO(a), nil
}

func (h *QueryHandler) createChat(ctx context.Context, raw json.RawMessage) (any, error) {
	vars, err := decodeVariables[httpdto.CreateChatVariables](raw)
	if err != nil {
		return nil, err
	}
	c, err := h.resolver.CreateChat(ctx, vars.TutorID)
	if err != nil {
		return nil, err
	}
	return httpdto.NewChatDTO(c), nil
}

func (h *QueryHandler) addMessage(ctx context.Context, raw json.RawMessage) (any, error) {
	vars, err := decodeVariables[httpdto.AddMessageVariables](raw)
	if err != nil {
		return nil, err
	}
	m, err := h.resolver.AddMessage(ctx, vars.ChatID, vars.MessageText)
	if err != nil {
		return nil, err
	}
	return httpdto.NewMessageDTO(m), nil
}

func (h *QueryHandler) updatePassword(ctx context.Context, raw json.RawMessage) (any, error) {
	vars, err := decodeVariables[httpdto.UpdatePasswordVariables](raw)
	if err != nil {
		return nil, err
	}
	if err := h.resolver.UpdatePassword(ctx, vars.Email, vars.OldPassword, vars.NewPassword); err != nil {
		return nil, err
	}
	return gin.H{"updated": true}, nil
}
