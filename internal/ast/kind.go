package ast

// Kind is the closed set of node kinds the AST producer emits. The names
// match libclang's CursorKind spelling.
type Kind int

const (
	KindUnknown Kind = iota

	KindTranslationUnit
	KindNamespace
	KindInclusionDirective

	KindStructDecl
	KindClassDecl
	KindCXXBaseSpecifier
	KindCXXMethod
	KindConstructor
	KindVarDecl
	KindParmDecl
	KindFieldDecl
	KindAnonymousUnionDecl
	KindAnonymousStructDecl
	KindAnonymousEnumDecl
	KindFriendDecl
	KindFunctionDecl

	KindCallExpr
	KindUnexposedExpr
	KindMemberRefExpr
	KindDeclRefExpr
	KindArraySubscriptExpr
	KindCXXThrowExpr
	KindInitListExpr
	KindObjBoolLiteralExpr
	KindCXXNullPtrLiteralExpr
	KindCXXStaticCastExpr
	KindParenExpr
	KindCXXDeleteExpr

	KindIntegerLiteral
	KindFloatingLiteral
	KindStringLiteral
	KindObjCStringLiteral
	KindAlignedAttr
	KindBinaryOperator
	KindUnaryOperator
	KindMacroDefinition
	KindMacroInstantiation

	KindNamespaceRef
	KindTypeRef
	KindMemberRef
	KindOverloadedDeclRef
	KindTemplateRef
	KindVariableRef

	KindCompoundStmt
	KindReturnStmt
	KindIfStmt
	KindForStmt
	KindDeclStmt
	KindSwitchStmt
	KindCaseStmt
	KindDefaultStmt
	KindCXXTryStmt
	KindCXXCatchStmt

	KindClassTemplate
	KindTemplateNonTypeParameter
	KindFunctionTemplate

	kindCount
)

var kindNames = [kindCount]string{
	KindUnknown:                  "UNKNOWN",
	KindTranslationUnit:          "TRANSLATION_UNIT",
	KindNamespace:                "NAMESPACE",
	KindInclusionDirective:       "INCLUSION_DIRECTIVE",
	KindStructDecl:               "STRUCT_DECL",
	KindClassDecl:                "CLASS_DECL",
	KindCXXBaseSpecifier:         "CXX_BASE_SPECIFIER",
	KindCXXMethod:                "CXX_METHOD",
	KindConstructor:              "CONSTRUCTOR",
	KindVarDecl:                  "VAR_DECL",
	KindParmDecl:                 "PARM_DECL",
	KindFieldDecl:                "FIELD_DECL",
	KindAnonymousUnionDecl:       "ANONYMOUS_UNION_DECL",
	KindAnonymousStructDecl:      "ANONYMOUS_STRUCT_DECL",
	KindAnonymousEnumDecl:        "ANONYMOUS_ENUM_DECL",
	KindFriendDecl:               "FRIEND_DECL",
	KindFunctionDecl:             "FUNCTION_DECL",
	KindCallExpr:                 "CALL_EXPR",
	KindUnexposedExpr:            "UNEXPOSED_EXPR",
	KindMemberRefExpr:            "MEMBER_REF_EXPR",
	KindDeclRefExpr:              "DECL_REF_EXPR",
	KindArraySubscriptExpr:       "ARRAY_SUBSCRIPT_EXPR",
	KindCXXThrowExpr:             "CXX_THROW_EXPR",
	KindInitListExpr:             "INIT_LIST_EXPR",
	KindObjBoolLiteralExpr:       "OBJ_BOOL_LITERAL_EXPR",
	KindCXXNullPtrLiteralExpr:    "CXX_NULL_PTR_LITERAL_EXPR",
	KindCXXStaticCastExpr:        "CXX_STATIC_CAST_EXPR",
	KindParenExpr:                "PAREN_EXPR",
	KindCXXDeleteExpr:            "CXX_DELETE_EXPR",
	KindIntegerLiteral:           "INTEGER_LITERAL",
	KindFloatingLiteral:          "FLOATING_LITERAL",
	KindStringLiteral:            "STRING_LITERAL",
	KindObjCStringLiteral:        "OBJC_STRING_LITERAL",
	KindAlignedAttr:              "ALIGNED_ATTR",
	KindBinaryOperator:           "BINARY_OPERATOR",
	KindUnaryOperator:            "UNARY_OPERATOR",
	KindMacroDefinition:          "MACRO_DEFINITION",
	KindMacroInstantiation:       "MACRO_INSTANTIATION",
	KindNamespaceRef:             "NAMESPACE_REF",
	KindTypeRef:                  "TYPE_REF",
	KindMemberRef:                "MEMBER_REF",
	KindOverloadedDeclRef:        "OVERLOADED_DECL_REF",
	KindTemplateRef:              "TEMPLATE_REF",
	KindVariableRef:              "VARIABLE_REF",
	KindCompoundStmt:             "COMPOUND_STMT",
	KindReturnStmt:               "RETURN_STMT",
	KindIfStmt:                   "IF_STMT",
	KindForStmt:                  "FOR_STMT",
	KindDeclStmt:                 "DECL_STMT",
	KindSwitchStmt:               "SWITCH_STMT",
	KindCaseStmt:                 "CASE_STMT",
	KindDefaultStmt:              "DEFAULT_STMT",
	KindCXXTryStmt:               "CXX_TRY_STMT",
	KindCXXCatchStmt:             "CXX_CATCH_STMT",
	KindClassTemplate:            "CLASS_TEMPLATE",
	KindTemplateNonTypeParameter: "TEMPLATE_NON_TYPE_PARAMETER",
	KindFunctionTemplate:         "FUNCTION_TEMPLATE",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k := KindUnknown + 1; k < kindCount; k++ {
		m[kindNames[k]] = k
	}
	return m
}()

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind maps a producer kind name to its Kind. Unrecognized names return
// KindUnknown and false.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindByName[name]
	return k, ok
}

// Kinds returns every known kind, excluding KindUnknown, in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindUnknown + 1; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// IsAnonymousAggregate reports whether k is an anonymous union or struct.
func (k Kind) IsAnonymousAggregate() bool {
	return k == KindAnonymousUnionDecl || k == KindAnonymousStructDecl
}

// IsAggregate reports whether k declares a named struct or class.
func (k Kind) IsAggregate() bool {
	return k == KindStructDecl || k == KindClassDecl
}
