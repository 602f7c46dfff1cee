package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type sample struct {
	Type string `binding:"required,transaction_type"`
	Kind string `binding:"omitempty,reference_kind"`
	Date string `binding:"omitempty,calendar_date"`
	Name string `binding:"required,notblank"`
}

func TestRegister(t *testing.T) {
	Register()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		t.Fatal("expected go-playground validator engine")
	}
	v.SetTagName("binding")

	tests := []struct {
		name    string
		input   sample
		wantErr bool
	}{
		{"valid spend", sample{Type: "spend", Kind: "tag", Date: "2024-05-01", Name: "Food"}, false},
		{"valid save without optionals", sample{Type: "save", Name: "Pension"}, false},
		{"unknown type", sample{Type: "income", Name: "Salary"}, true},
		{"unknown kind", sample{Type: "earn", Kind: "account", Name: "x"}, true},
		{"bad date", sample{Type: "earn", Date: "01/05/2024", Name: "x"}, true},
		{"blank name", sample{Type: "earn", Name: "   "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
