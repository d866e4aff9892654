package creds

import (
	"github.com/go-playground/validator/v10"
)

type CredsStruct struct {
	Token     string `validate:"required"`
	Url       string `validate:"omitempty,url"`
	Directory string `validate:"required"`
}

func (cs *CredsStruct) Validate() error {
	v := validator.New()
	if err := v.Struct(cs); err != nil {
		return err
	}
	return nil
}
