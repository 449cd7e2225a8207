package validate

import "github.com/dshills/vex/internal/engine/dom"

// All combines validators; a sequence is valid only if every one accepts
// it. Nil validators are skipped.
func All(vs ...dom.Validator) dom.Validator {
	var list []dom.Validator
	for _, v := range vs {
		if v != nil {
			list = append(list, v)
		}
	}
	return dom.ValidatorFunc(func(parent dom.QName, sequence []dom.QName, partial bool) bool {
		for _, v := range list {
			if !v.Validate(parent, sequence, partial) {
				return false
			}
		}
		return true
	})
}
