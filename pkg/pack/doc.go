// Package pack defines the style-pack document model and its on-disk codecs.
//
// A pack is a single document contributing zero or more style entries. Each
// entry names a style (id, display name, category) and carries one or more
// variant templates: a phrase-based "default" template (ordered prefix and
// suffix phrase sequences) and optional prose templates keyed by variant
// name. Packs are authored as JSON or YAML; the codec is selected per file
// by extension.
//
// # Document Format
//
// A pack document contains a version marker and an ordered sequence of
// style entries:
//
//	{
//	  "version": 1,
//	  "styles": [
//	    {
//	      "id": "cyanotype_print",
//	      "name": "Cyanotype Print",
//	      "category": "Photography/Alt Process",
//	      "default": {
//	        "prefix": "cyanotype photograph, prussian blue tones",
//	        "suffix": "archival paper texture"
//	      },
//	      "models": {
//	        "flux_2_klein": {
//	          "prefix": "A cyanotype photograph of",
//	          "suffix": "rendered in deep Prussian blue on textured paper."
//	        }
//	      },
//	      "tags": ["photography", "alt-process"]
//	    }
//	  ]
//	}
//
// Unknown fields are ignored so documents produced by newer or third-party
// authoring tools still load.
//
// # Templates
//
// Templates are a tagged variant selected at decode time: a PhraseTemplate
// holds ordered phrase sequences split on the exact ", " separator, a
// ProseTemplate holds free-text sentence fragments. Consumers switch on the
// concrete type; a template kind unknown to a consumer is a hard error, not
// a silent fallthrough.
//
// # Error Recovery
//
// Decoding recovers at the entry level. A document that fails to parse at
// all is rejected with a *ParseError. A document that parses but contains
// malformed entries (missing id or name, no usable template, wrong shape)
// loads its valid entries and reports one *EntryError per rejected entry.
// Sibling entries in the same document are never blocked by a bad entry.
package pack
