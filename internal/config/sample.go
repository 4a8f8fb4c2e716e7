package config

// Sample is the config written by `ticksel init`.
const Sample = `# ticksel configuration
#
# Each task selects one category inside one section and sets its quantity.
#   section:  the section number as shown on the page ("Match 1" -> 1)
#   category: which category to select (1, 2, 3, ...)
#   quantity: how many to select (1-4)
#
# Tasks run top to bottom. A task that fails is reported and the run moves on.

hotkey: ctrl+s      # triggers a run from the terminal UI
page_hotkey: s      # Ctrl/Cmd+Shift+S inside the browser (ticksel watch)
notify_for: 4s

labels:
  section: Match
  section_abbrev: M
  category: Category
  exclude: [wheelchair, accessible, accessibility, easy access]
  disclosure: [show more, expand, details, more options]

# Increase the delays if the page is slow to re-render.
timing:
  action_delay: 500ms
  category_settle: 250ms
  poll_interval: 500ms
  poll_attempts: 10
  click_delay: 150ms
  decrement_delay: 100ms
  decrement_attempts: 10
  section_depth: 6
  ancestor_depth: 5

tasks:
  - { section: 1, category: 2, quantity: 2 }
  - { section: 2, category: 2, quantity: 2 }
  - { section: 3, category: 2, quantity: 2 }
  # - { section: 4, category: 1, quantity: 1 }
`
