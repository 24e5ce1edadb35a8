package domain

// TemplateDescriptor identifies one template within a category. Descriptors
// are constructed fresh on every catalog listing and are not persisted by the
// core; Path is an opaque handle passed back to the TemplateStore.
type TemplateDescriptor struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	SizeBytes int64  `json:"size_bytes"`
	Path      string `json:"path"`
}
