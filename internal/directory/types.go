package directory

// Contact is a seeded directory row. ReplyTemplate drives reply generation:
// a template containing %s substitutes the incoming text, any other template
// is the literal reply.
type Contact struct {
	ID            int64
	Name          string
	Avatar        string
	BubbleCapable bool
	ReplyTemplate string
}
