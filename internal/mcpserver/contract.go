package mcpserver

// ArticleFormatContract describes the canonical Markdown article format that
// LLM consumers should follow when authoring article files.
const ArticleFormatContract = `# Byline Article Format Contract

Every Markdown article stored in Byline MUST follow this structure.

## Structure

` + "```" + `markdown
---
title: Human-readable title          # REQUIRED – used in lists, search, metadata
published: true                      # OPTIONAL – false (default) keeps the article a draft
password: s3cret                     # REQUIRED for drafts – preview token for shared links
tags: discuss, golang                # OPTIONAL – comma/space separated or a YAML list
description: One-line summary        # OPTIONAL – used as the meta description base
published_at: 2025-01-15T09:00:00Z   # OPTIONAL – RFC 3339, set when published
canonical_url: https://example.com/x # OPTIONAL – external canonical source
organization: acme                   # OPTIONAL – organization slug
boosted: false                       # OPTIONAL – promoted placement flag
seo_description: Exact replacement   # OPTIONAL – overrides the generated description verbatim
video_source_url: https://...        # OPTIONAL – video articles only
video_thumbnail_url: https://...     # OPTIONAL – raw thumbnail, CDN-transformed on output
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **YAML front matter is mandatory.** The ` + "```" + `---` + "```" + ` fences must be the first
   thing in the file (no leading blank lines).
2. **` + "`" + `title` + "`" + ` field is required.** It is the primary display name everywhere.
3. **File layout** is ` + "`" + `{username}/{slug}.md` + "`" + `: the directory is the author,
   the file stem is the slug (a ` + "`" + `slug` + "`" + ` front matter field overrides the stem).
4. **Tags** are lowercase, kebab-case (e.g. ` + "`" + `discuss` + "`" + `, ` + "`" + `meeting-notes` + "`" + `);
   the ` + "`" + `discuss` + "`" + ` tag raises the inline comment count.
5. **Drafts** (` + "`" + `published: false` + "`" + ` or absent) need a non-empty
   ` + "`" + `password` + "`" + ` for their preview links to work.
6. **Encoding** is UTF-8 with a trailing newline.

## Example

` + "```" + `markdown
---
title: Shipping the new editor
published: true
published_at: 2025-01-20T10:00:00Z
tags: golang, tooling
description: How we rebuilt the editor pipeline.
organization: acme
---

# Shipping the new editor

We rewrote the pipeline end to end...
` + "```" + `
`
