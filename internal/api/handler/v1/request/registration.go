package request

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/urcet/yourfest-api/internal/domain"
)

const (
	// at least ten digits, optionally grouped with spaces, dashes,
	// parentheses or a leading +
	phoneRegexPattern = `^(?=(?:\D*\d){10,})\+?[0-9\-\s()]+$`
)

var phoneExp = regexp2.MustCompile(phoneRegexPattern, regexp2.None)

const (
	msgName           = "Name must be at least 2 characters"
	msgEmail          = "Invalid email address"
	msgPhone          = "Phone number must be at least 10 digits"
	msgRollNumber     = "Roll number is required"
	msgBranch         = "Branch name is required"
	msgYear           = "Year of study is required"
	msgEducationLevel = "Education level is required"
	msgCollege        = "College name is required"
	msgRegType        = "Registration type must be tech, cultural or both"
	msgTeamName       = "Team name must be at most 100 characters"
	msgNoEvents       = "Select at least one event"
)

// fieldOrder decides which violation is reported when several fields fail.
var fieldOrder = []string{
	"participantName",
	"email",
	"phone",
	"rollNumber",
	"participantBranch",
	"participantYear",
	"educationLevel",
	"college",
	"regType",
	"teamName",
	"eventIds",
}

type CreateRegistrationRequest struct {
	ParticipantName   string   `json:"participantName"`
	Email             string   `json:"email"`
	Phone             string   `json:"phone"`
	RollNumber        string   `json:"rollNumber"`
	ParticipantBranch string   `json:"participantBranch"`
	ParticipantYear   string   `json:"participantYear"`
	EducationLevel    string   `json:"educationLevel"`
	College           string   `json:"college"`
	RegType           string   `json:"regType"`
	TeamName          string   `json:"teamName"`
	EventIDs          []string `json:"eventIds"`
}

func (req *CreateRegistrationRequest) normalize() {
	for _, s := range []*string{
		&req.ParticipantName, &req.Email, &req.Phone, &req.RollNumber,
		&req.ParticipantBranch, &req.ParticipantYear, &req.EducationLevel,
		&req.College, &req.RegType, &req.TeamName,
	} {
		*s = strings.TrimSpace(*s)
	}
	req.Email = strings.ToLower(req.Email)
	req.RegType = strings.ToLower(req.RegType)
}

// Validate normalises the request and returns the first violation as a
// *domain.ValidationError.
func (req *CreateRegistrationRequest) Validate() error {
	req.normalize()

	err := validation.ValidateStruct(
		req,
		validation.Field(&req.ParticipantName, validation.Required.Error(msgName), validation.Length(2, 0).Error(msgName)),
		validation.Field(&req.Email, validation.Required.Error(msgEmail), is.Email.Error(msgEmail)),
		validation.Field(&req.Phone, validation.Required.Error(msgPhone), validation.By(validPhone)),
		validation.Field(&req.RollNumber, validation.Required.Error(msgRollNumber)),
		validation.Field(&req.ParticipantBranch, validation.Required.Error(msgBranch)),
		validation.Field(&req.ParticipantYear, validation.Required.Error(msgYear)),
		validation.Field(&req.EducationLevel, validation.Required.Error(msgEducationLevel)),
		validation.Field(&req.College, validation.Required.Error(msgCollege)),
		validation.Field(&req.RegType, validation.In(
			string(domain.RegistrationCategoryTech),
			string(domain.RegistrationCategoryCultural),
			string(domain.RegistrationCategoryBoth),
		).Error(msgRegType)),
		validation.Field(&req.TeamName, validation.Length(0, 100).Error(msgTeamName)),
		validation.Field(&req.EventIDs, validation.By(validEventIDs)),
	)

	return firstViolation(err)
}

func (req *CreateRegistrationRequest) ToDomain() domain.RegistrationInput {
	return domain.RegistrationInput{
		Participant: domain.Participant{
			Name:           req.ParticipantName,
			Email:          req.Email,
			Phone:          req.Phone,
			RollNumber:     req.RollNumber,
			Branch:         req.ParticipantBranch,
			Year:           req.ParticipantYear,
			EducationLevel: req.EducationLevel,
			Institution:    req.College,
		},
		EventIDs: req.EventIDs,
		TeamName: req.TeamName,
		Category: domain.RegistrationCategory(req.RegType),
	}
}

type QuoteRequest struct {
	EventIDs []string `json:"eventIds"`
}

func (req *QuoteRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.EventIDs, validation.By(validEventIDs)),
	)

	return firstViolation(err)
}

func validPhone(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	ok, err := phoneExp.MatchString(s)
	if err != nil || !ok {
		return errors.New(msgPhone)
	}

	return nil
}

func validEventIDs(value interface{}) error {
	ids, _ := value.([]string)
	if len(ids) == 0 {
		return errors.New(msgNoEvents)
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return errors.New("Event id must not be blank")
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("Event %s is selected more than once", id)
		}
		seen[id] = struct{}{}
	}

	return nil
}

func firstViolation(err error) error {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}

	for _, field := range fieldOrder {
		if fieldErr, ok := errs[field]; ok && fieldErr != nil {
			return domain.NewValidationError(field, fieldErr.Error())
		}
	}

	// a field missing from fieldOrder
	for field, fieldErr := range errs {
		if fieldErr != nil {
			return domain.NewValidationError(field, fieldErr.Error())
		}
	}

	return nil
}
