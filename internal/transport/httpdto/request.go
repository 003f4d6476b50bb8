package httpdto

import "encoding/json"

// Operation names accepted by POST /v1/query.
const (
	OpMe             = "me"
	OpUsers          = "users"
	OpUser           = "user"
	OpStudent        = "student"
	OpTutors         = "tutors"
	OpChat           = "chat"
	OpSignedLink     = "signedLink"
	OpAddStudent     = "addStudent"
	OpAddTutor       = "addTutor"
	OpLogin          = "login"
	OpUpdateUser     = "updateUser"
	OpCreateChat     = "createChat"
	OpAddMessage     = "addMessage"
	OpUpdatePassword = "updatePassword"
	OpSingleUpload   = "singleUpload"
)

// QueryRequest is the JSON body of POST /v1/query.
type QueryRequest struct {
	Operation string          `json:"operation" binding:"required"`
	Variables json.RawMessage `json:"variables,omitempty"`
}

type UserVariables struct {
	Username string `json:"username" binding:"required"`
}

type IDVariables struct {
	ID string `json:"id" binding:"required"`
}

type SignedLinkVariables struct {
	Filename string `json:"filename" binding:"required"`
}

// SignupVariables carries addStudent / addTutor fields. Role specific fields
// are ignored for the other role.
type SignupVariables struct {
	Username   string   `json:"username" binding:"required"`
	Email      string   `json:"email" binding:"required"`
	Password   string   `json:"password" binding:"required"`
	FirstName  string   `json:"firstName,omitempty"`
	LastName   string   `json:"lastName,omitempty"`
	Bio        string   `json:"bio,omitempty"`
	Subjects   []string `json:"subjects,omitempty"`
	HourlyRate float64  `json:"hourlyRate,omitempty"`
	GradeLevel string   `json:"gradeLevel,omitempty"`
	Goals      string   `json:"goals,omitempty"`
}

type LoginVariables struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserVariables struct {
	Username  *string `json:"username,omitempty"`
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

type CreateChatVariables struct {
	TutorID string `json:"tutorId" binding:"required"`
}

type AddMessageVariables struct {
	ChatID      string `json:"chatId" binding:"required"`
	MessageText string `json:"messageText" binding:"required"`
}

type UpdatePasswordVariables struct {
	Email       string `json:"email" binding:"required"`
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}
