package mcpserver

// NoteFormatURI is the resource URI of NoteFormat.
const NoteFormatURI = "floativerse://note-format"

// NoteFormat describes how notes are mirrored to disk and how the editor
// commands read them, for LLM consumers.
const NoteFormat = `# floativerse note format

Notes live in a database. When the mirror is enabled each note is also
written to ` + "`<id>.md`" + ` in the vault directory, and edits made to that
file are imported back.

## Mirror file

` + "```" + `markdown
---
id: 5f0c0e8e-5a1b-4d8e-9a53-2b1b6f0f6c2a
title: Weekly standup
tags:
  - meeting-notes
user_id: local
created: 2025-01-20T09:00:00Z
updated: 2025-01-20T09:30:00Z
---
# Weekly standup

## Action items

- review the design doc
` + "```" + `

## Rules

1. The frontmatter is optional for new files. Without it the id is the
   file name, the title is the first level-1 heading (or the first heading,
   or the id) and tags are the inline ` + "`#tags`" + ` of the body.
2. Only top-level ` + "`.md`" + ` files are mirrored; hidden files are ignored.
3. Everything after the closing ` + "`---`" + ` line is the note content, byte for byte.

## Headings and context

Headings are ATX lines ` + "`# Title`" + ` through ` + "`###### Title`" + `. A section is a
heading and the lines up to the next heading of any level, so nested
headings split their parent. Queries passed to build_prompt or ask_ai may
name sections by level (` + "`h1`" + `, ` + "`header2`" + `, ` + "`heading3`" + `) or by quoted
title (` + "`'Action items'`" + `); matched sections are attached above the query.
With no match the first level-1 section is attached.

## Images

Attach images with the attach_image tool and paste the returned
` + "`markdown`" + ` field into the note: ` + "`![alt](/attachments/<name>.png)`" + `.
`
