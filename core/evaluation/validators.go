package evaluation

import (
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/peereval/core"
)

var (
	scoreTag  = "score"
	scoreText = fmt.Sprintf("scores must be between %d and %d", MinScore, MaxScore)

	lenTag  = "len"
	lenText = fmt.Sprintf("exactly %d scores are required", NumCriteria)
)

// InitValidators registers the evaluation validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(scoreTag, scoreValidation)
	core.RegisterCustomTranslation(validate, translator, scoreTag, scoreText)
	core.RegisterCustomTranslation(validate, translator, lenTag, lenText, true)
}

// Custom Validators

// scoreValidation checks that a criterion score is within [MinScore, MaxScore].
func scoreValidation(fl validator.FieldLevel) bool {
	if score, ok := fl.Field().Interface().(int); ok {
		return inRange(score)
	}
	return false
}
