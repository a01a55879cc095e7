package parsers

import (
	"context"
	"os"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

// Node kinds that declare fields. Interface members are constant_declaration
// in the Java grammar but are fields all the same.
var fieldDeclarationKinds = map[string]bool{
	"field_declaration":    true,
	"constant_declaration": true,
}

// javaParser extracts field declarations from Java files.
type javaParser struct {
	*treeSitterParser
}

// NewJavaParser creates a new Java field extractor.
func NewJavaParser() *javaParser {
	lang := sitter.NewLanguage(java.Language())
	return &javaParser{
		treeSitterParser: newTreeSitterParser(lang, "java"),
	}
}

// Extension returns ".java".
func (p *javaParser) Extension() string {
	return ".java"
}

// ParseFile reads a Java source file and extracts its fields.
func (p *javaParser) ParseFile(ctx context.Context, filePath string) ([]FieldRecord, error) {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return p.ExtractFields(ctx, filePath, source)
}

// ExtractFields parses source and returns every field variable in source
// order, descending into nested, local and anonymous classes.
func (p *javaParser) ExtractFields(ctx context.Context, filePath string, source []byte) ([]FieldRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree, err := p.parse(filePath, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	fields := []FieldRecord{}
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		if fieldDeclarationKinds[n.Kind()] {
			fields = append(fields, p.extractField(n, source)...)
		}
		// Initializers may hold anonymous class bodies with their own fields.
		return true
	})

	return fields, nil
}

// extractField emits one record per variable declarator of a field declaration.
func (p *javaParser) extractField(node *sitter.Node, source []byte) []FieldRecord {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return nil
	}
	typeName := extractNodeText(typeNode, source)
	if typeName == "" {
		return nil
	}

	comment := p.javadocFor(node, source)

	var records []FieldRecord
	for _, declarator := range findChildrenByType(node, "variable_declarator") {
		nameNode := declarator.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := extractNodeText(nameNode, source)
		if name == "" {
			continue
		}

		// C-style array dimensions belong to the variable: int a[], b;
		declType := typeName
		if dims := declarator.ChildByFieldName("dimensions"); dims != nil {
			declType += strings.Join(strings.Fields(extractNodeText(dims, source)), "")
		}

		record := FieldRecord{
			Name:    name,
			Type:    declType,
			Comment: comment,
			Line:    int(declarator.StartPosition().Row) + 1,
		}
		if valueNode := declarator.ChildByFieldName("value"); valueNode != nil {
			record.Default = strPtr(extractNodeText(valueNode, source))
		}
		records = append(records, record)
	}
	return records
}

// javadocFor returns the description of the Javadoc comment directly above
// node, or nil when there is none. Only whitespace may separate the two.
func (p *javaParser) javadocFor(node *sitter.Node, source []byte) *string {
	prev := node.PrevSibling()
	if prev == nil || prev.Kind() != "block_comment" {
		return nil
	}

	text := extractNodeText(prev, source)
	if !isJavadoc(text) {
		return nil
	}

	between := string(source[prev.EndByte():node.StartByte()])
	if strings.TrimSpace(between) != "" {
		return nil
	}

	return strPtr(javadocDescription(text))
}
