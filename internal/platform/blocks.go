package platform

// The block tree mirrors the platform's view JSON. Only the block kinds this
// app renders are modeled.

// TextObject is a piece of display text.
type TextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Markdown returns a markdown text object.
func Markdown(text string) *TextObject {
	return &TextObject{Type: "mrkdwn", Text: text}
}

// PlainText returns a plain text object.
func PlainText(text string) *TextObject {
	return &TextObject{Type: "plain_text", Text: text}
}

// Option is one selectable entry of a menu or radio group.
type Option struct {
	Text  *TextObject `json:"text"`
	Value string      `json:"value"`
}

// Element is an interactive control inside a block.
type Element struct {
	Type         string      `json:"type"`
	ActionID     string      `json:"action_id,omitempty"`
	Text         *TextObject `json:"text,omitempty"`
	Value        string      `json:"value,omitempty"`
	Style        string      `json:"style,omitempty"`
	Options      []Option    `json:"options,omitempty"`
	InitialValue string      `json:"initial_value,omitempty"`
	Placeholder  *TextObject `json:"placeholder,omitempty"`
	Multiline    bool        `json:"multiline,omitempty"`
}

// Block is one node of the rendered view.
type Block struct {
	Type      string      `json:"type"`
	BlockID   string      `json:"block_id,omitempty"`
	Text      *TextObject `json:"text,omitempty"`
	Label     *TextObject `json:"label,omitempty"`
	Elements  []Element   `json:"elements,omitempty"`
	Element   *Element    `json:"element,omitempty"`
	Accessory *Element    `json:"accessory,omitempty"`
	Optional  bool        `json:"optional,omitempty"`
}

// Modal is a view opened over the home surface.
type Modal struct {
	Title  string  `json:"title"`
	Blocks []Block `json:"blocks"`
	Submit string  `json:"submit,omitempty"`
	// CallbackID routes the submission back as an ActionKind.
	CallbackID string `json:"callback_id,omitempty"`
	// PrivateMetadata round-trips opaque state through the modal.
	PrivateMetadata string `json:"private_metadata,omitempty"`
}

// HomeView is the content of the app home surface.
type HomeView struct {
	Blocks []Block `json:"blocks"`
}

// Header returns a header block.
func Header(text string) Block {
	return Block{Type: "header", Text: PlainText(text)}
}

// Section returns a markdown section block.
func Section(text string) Block {
	return Block{Type: "section", Text: Markdown(text)}
}

// SectionWithAccessory returns a markdown section with a trailing control.
func SectionWithAccessory(text string, accessory Element) Block {
	return Block{Type: "section", Text: Markdown(text), Accessory: &accessory}
}

// Divider returns a divider block.
func Divider() Block {
	return Block{Type: "divider"}
}

// Actions returns a row of interactive controls.
func Actions(elements ...Element) Block {
	return Block{Type: "actions", Elements: elements}
}

// Context returns a context block of muted text.
func Context(text string) Block {
	return Block{Type: "context", Elements: []Element{{Type: "mrkdwn", Text: Markdown(text)}}}
}

// Input returns a labeled input block.
func Input(blockID, label string, element Element, optional bool) Block {
	return Block{Type: "input", BlockID: blockID, Label: PlainText(label), Element: &element, Optional: optional}
}

// Button returns a button element carrying an opaque value token.
func Button(kind ActionKind, label, value string) Element {
	return Element{Type: "button", ActionID: string(kind), Text: PlainText(label), Value: value}
}

// StyledButton returns a button with a primary or danger style.
func StyledButton(kind ActionKind, label, value, style string) Element {
	button := Button(kind, label, value)
	button.Style = style
	return button
}

// TextInput returns a single-line text input element.
func TextInput(kind ActionKind, placeholder, initial string) Element {
	element := Element{Type: "plain_text_input", ActionID: string(kind), InitialValue: initial}
	if placeholder != "" {
		element.Placeholder = PlainText(placeholder)
	}
	return element
}

// StaticSelect returns a fixed-options select menu.
func StaticSelect(kind ActionKind, options []Option) Element {
	return Element{Type: "static_select", ActionID: string(kind), Options: options}
}

// DatePicker returns a date picker element.
func DatePicker(kind ActionKind, initial string) Element {
	return Element{Type: "datepicker", ActionID: string(kind), InitialValue: initial}
}
