// Package errors provides structured error handling with machine codes.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Locale errors
	CodeLocaleCodeEmpty   Code = "LOCALE_CODE_EMPTY"
	CodeLocaleCodeInvalid Code = "LOCALE_CODE_INVALID"
	CodeLocaleNotFound    Code = "LOCALE_NOT_FOUND"

	// User errors
	CodeUserNameEmpty       Code = "USER_NAME_EMPTY"
	CodeUserNameInvalid     Code = "USER_NAME_INVALID"
	CodeUserPasswordEmpty   Code = "USER_PASSWORD_EMPTY"
	CodeUserNotFound        Code = "USER_NOT_FOUND"
	CodeUserBadCredentials  Code = "USER_BAD_CREDENTIALS"
	CodeUserNotAuthorized   Code = "USER_NOT_AUTHORIZED"
	CodeUserNotActivePerm   Code = "USER_MISSING_PERMISSION"
	CodeUserSessionInvalid  Code = "USER_SESSION_INVALID"
	CodeUserSessionRequired Code = "USER_SESSION_REQUIRED"

	// Page errors
	CodePageTitleEmpty   Code = "PAGE_TITLE_EMPTY"
	CodePageSlugEmpty    Code = "PAGE_SLUG_EMPTY"
	CodePageSlugInvalid  Code = "PAGE_SLUG_INVALID"
	CodePageKindInvalid  Code = "PAGE_KIND_INVALID"
	CodePageLocaleEmpty  Code = "PAGE_LOCALE_EMPTY"
	CodePageNotFound     Code = "PAGE_NOT_FOUND"
	CodePageParentCycle  Code = "PAGE_PARENT_CYCLE"
	CodePageRootMissing  Code = "PAGE_ROOT_MISSING"
	CodePageNotPublished Code = "PAGE_NOT_PUBLISHED"

	// Translation errors
	CodeTranslationNotFound    Code = "TRANSLATION_NOT_FOUND"
	CodeTranslationInvalid     Code = "TRANSLATION_INVALID"
	CodeTranslationSameLocale  Code = "TRANSLATION_SAME_LOCALE"
	CodeSegmentNotFound        Code = "SEGMENT_NOT_FOUND"
	CodeSegmentContextEmpty    Code = "SEGMENT_CONTEXT_EMPTY"
	CodeSourceNotFound         Code = "TRANSLATION_SOURCE_NOT_FOUND"
	CodeSourceInvalid          Code = "TRANSLATION_SOURCE_INVALID"
	CodeStringNotFound         Code = "STRING_NOT_FOUND"
	CodeStringValueEmpty       Code = "STRING_VALUE_EMPTY"
	CodeStringTranslationEmpty Code = "STRING_TRANSLATION_EMPTY"

	// Intentional blanks errors
	CodeBlanksMarkerMissing    Code = "BLANKS_MARKER_MISSING"
	CodeBlanksSeparatorMissing Code = "BLANKS_SEPARATOR_MISSING"
	CodeBlanksParamInvalid     Code = "BLANKS_PARAM_INVALID"

	// Transport errors
	CodeRequestInvalid Code = "REQUEST_INVALID"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeStorage  Code = "STORAGE_FAILURE"
)
