package ledger

import "fmt"

// LinkagePolicy controls how the verifier treats a candidate whose parent
// block is not present in the ledger.
type LinkagePolicy string

const (
	// LinkageLenient skips the linkage check when the parent is absent.
	// This tolerates replay of partial exports.
	LinkageLenient LinkagePolicy = "lenient"

	// LinkageStrict rejects a candidate whose parent is absent.
	LinkageStrict LinkagePolicy = "strict"
)

// SignaturePolicy controls append-time signature enforcement.
type SignaturePolicy string

const (
	// SignaturesOff never checks signatures.
	SignaturesOff SignaturePolicy = "off"

	// SignaturesIfPresent verifies signed blocks and accepts unsigned ones.
	SignaturesIfPresent SignaturePolicy = "if-present"

	// SignaturesRequired rejects unsigned blocks and invalid signatures.
	SignaturesRequired SignaturePolicy = "required"
)

// ParseLinkagePolicy validates a linkage policy name. Empty selects the default.
func ParseLinkagePolicy(s string) (LinkagePolicy, error) {
	switch p := LinkagePolicy(s); p {
	case "":
		return LinkageLenient, nil
	case LinkageLenient, LinkageStrict:
		return p, nil
	default:
		return "", NewError(KindInvalidParam, "config", fmt.Sprintf("unknown linkage policy %q", s))
	}
}

// ParseSignaturePolicy validates a signature policy name. Empty selects the default.
func ParseSignaturePolicy(s string) (SignaturePolicy, error) {
	switch p := SignaturePolicy(s); p {
	case "":
		return SignaturesIfPresent, nil
	case SignaturesOff, SignaturesIfPresent, SignaturesRequired:
		return p, nil
	default:
		return "", NewError(KindInvalidParam, "config", fmt.Sprintf("unknown signature policy %q", s))
	}
}
