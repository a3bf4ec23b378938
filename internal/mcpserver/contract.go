package mcpserver

// PostFormatContract describes how blog post files are authored. Posts are
// read-only through this server; the contract helps an assistant draft a file
// that a human then commits to the content directory.
const PostFormatContract = `# Folio Post Format Contract

Every post is one Markdown file directly inside the content directory.
The file name without its extension is the post slug and its URL segment.

## Structure

` + "```" + `markdown
---
title: Human-readable title         # shown in listings and the page header
description: One-sentence summary   # OPTIONAL – listing teaser
author: Jane Doe                    # OPTIONAL
date: 2025-01-15                    # ISO-8601 date or datetime
image: /assets/cover.png            # OPTIONAL – cover image
tags:                               # OPTIONAL – YAML list
  - frontend
  - react
---

Body text in standard Markdown (GitHub flavoured).
` + "```" + `

## Rules

1. **Front matter comes first.** The ` + "`" + `---` + "`" + ` fences must open the file.
   A file without front matter is still a post, with every field empty.
2. **` + "`" + `date` + "`" + ` must be ISO-8601** (` + "`" + `2025-01-15` + "`" + ` or
   ` + "`" + `2025-01-15T08:00:00+07:00` + "`" + `). Listings sort by comparing the date text, so any
   other format sorts wrongly.
3. **Tags** are a YAML list. Matching is case-insensitive; the tag cloud shows them
   lower-cased. A single string instead of a list is ignored.
4. **Headings** of level 1 to 3 (` + "`" + `#` + "`" + `, ` + "`" + `##` + "`" + `, ` + "`" + `###` + "`" + `) form the table of contents.
   Their anchor is the heading text lower-cased with punctuation removed and spaces
   turned into hyphens: ` + "`" + `## What's New?` + "`" + ` becomes ` + "`" + `#whats-new` + "`" + `.
   Non-breaking spaces count as spaces. Headings inside fenced code blocks are ignored.
5. **Slugs** are plain file names: no sub-directories, no path separators.
6. **Encoding** is UTF-8 with a trailing newline. A leading byte order mark is tolerated.

## Assets & Images

- Images live in the assets directory (flat, no sub-folders).
- Reference them with the absolute path: ` + "`" + `![description](/assets/filename.png)` + "`" + `

## Example

` + "```" + `markdown
---
title: Getting started with React hooks
description: useState and useEffect by example.
date: 2025-01-20
tags:
  - frontend
  - react
---

# Getting started with React hooks

![Hook lifecycle](/assets/hooks-lifecycle.png)

## useState

...

## useEffect

...
` + "```" + `
`
