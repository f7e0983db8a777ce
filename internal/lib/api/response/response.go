// Package response holds the JSON shapes shared by every handler: a list of
// rule violations for validation failures and a single-message body for
// everything else.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ErrorItem struct {
	Msg string `json:"msg"`
}

type ErrorList struct {
	Errors []ErrorItem `json:"errors"`
}

type Message struct {
	Msg string `json:"msg"`
}

func Error(msg string) ErrorList {
	return ErrorList{Errors: []ErrorItem{{Msg: msg}}}
}

func Msg(msg string) Message {
	return Message{Msg: msg}
}

// ValidationError flattens validator output into one message per violated
// rule, so the client can render every problem at once.
func ValidationError(errs validator.ValidationErrors) ErrorList {
	items := make([]ErrorItem, 0, len(errs))

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			items = append(items, ErrorItem{Msg: fmt.Sprintf("%s is required.", err.Field())})
		case "email":
			items = append(items, ErrorItem{Msg: "Please include a valid email."})
		case "min":
			items = append(items, ErrorItem{
				Msg: fmt.Sprintf("Please enter a %s with %s or more characters.",
					strings.ToLower(err.Field()), err.Param()),
			})
		default:
			items = append(items, ErrorItem{Msg: fmt.Sprintf("%s is not valid.", err.Field())})
		}
	}

	return ErrorList{Errors: items}
}
