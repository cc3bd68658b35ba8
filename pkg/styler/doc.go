// Package styler resolves a style selection into a transformation applied
// to a free-text prompt, producing the final string handed to downstream
// encoding.
//
// This is the request-facing half of the style system: the catalog package
// loads and merges style packs, the styler consumes the resulting catalog
// to answer one question per request — given a prompt, a style selection,
// and a variant name, what is the final prompt text?
//
// # Resolution Flow
//
//	ResolutionRequest
//	       ↓
//	apply_style false? → return prompt unchanged (never fails)
//	       ↓
//	Effective id: override wins over dropdown choice
//	       ↓
//	Catalog lookup → miss? → StyleNotFoundError (with suggestions)
//	       ↓
//	Variant chain [requested, default] → exhausted? → TemplateUnavailableError
//	       ↓
//	Apply template:
//	  phrase → split, concatenate, de-duplicate, rejoin
//	  prose  → prefix + prompt + suffix, blank segments omitted
//	       ↓
//	ResolutionResult (final prompt, matched id, variant, kind)
//
// # Phrase Merging
//
// Phrase templates carry ordered prefix and suffix phrase sequences. The
// user prompt is split on the exact ", " delimiter, sandwiched between
// them, and the combined sequence is de-duplicated case-insensitively:
// the first occurrence of a phrase wins and keeps its casing, later
// duplicates are dropped. Merging is idempotent — applying the same style
// twice yields the same text.
//
// # Basic Usage
//
//	st := styler.New(store, nil, nil)
//
//	result, err := st.Resolve(ctx, &styler.Request{
//	    Prompt:     "a lighthouse at dusk",
//	    ApplyStyle: true,
//	    StyleChoice: "Photography | Long Exposure | long_exposure",
//	})
//	if err != nil {
//	    var notFound *styler.StyleNotFoundError
//	    if errors.As(err, &notFound) {
//	        log.Warn("unknown style", "id", notFound.StyleID, "suggestions", notFound.Suggestions)
//	    }
//	    return err
//	}
//	fmt.Println(result.FinalPrompt)
//
// # Error Contract
//
// A disabled apply_style toggle short-circuits every lookup and never
// fails, whatever the selection carries. An enabled toggle with an id the
// catalog cannot resolve is always a hard StyleNotFoundError — explicit
// style requests are never silently ignored, including against an empty
// catalog or a dropdown choice that went stale after a reload.
//
// # Thread Safety
//
// Resolution is a pure function of (request, catalog): the styler holds
// no per-request state and is safe for unlimited concurrent use. Catalog
// refresh happens inside the store; a request observes either the old or
// the new catalog, never a partial merge.
package styler
