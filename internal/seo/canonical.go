package seo

// CanonicalCheck passes when the page declares a <link rel="canonical">.
// Only presence matters; the href is not validated.
type CanonicalCheck struct{}

func (CanonicalCheck) Name() string { return "canonical" }

func (CanonicalCheck) Run(doc *Document) (Result, error) {
	if doc.Has(`link[rel="canonical"]`) {
		return Result{Passed: true, Message: "canonical link present"}, nil
	}
	return Result{Passed: false, Message: "no canonical link present"}, nil
}
