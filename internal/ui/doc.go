// Package ui provides the user interface components for the messly TUI.
//
// # Overview
//
// The ui package implements the visual components of messly using the Bubble Tea
// framework and Lipgloss styling library. Components hold view state only; every
// network call and every decision about what to show lives in the app package,
// which pushes data in through setters and reads user intent back out.
//
// # Layout System
//
// The chat screen is organized as follows:
//
//	┌─────────────────────────────────────────────────────┐
//	│ Header (1 line)                                     │
//	├─────────────────┬───────────────────────────────────┤
//	│                 │                                   │
//	│   Sidebar       │         Chat Panel                │
//	│   (1/3 width)   │         (2/3 width)               │
//	│                 ├───────────────────────────────────┤
//	│                 │         Input                     │
//	├─────────────────┴───────────────────────────────────┤
//	│ Footer (1 line)                                     │
//	└─────────────────────────────────────────────────────┘
//
// The admin screen replaces the sidebar and chat panel with a single AdminPanel.
// The auth screen shows only the login or register modal.
//
// # Components
//
// ViewContext: Singleton that manages centralized layout calculations.
// All size calculations should go through ViewContext to ensure consistency.
//
// Header: Application title, open chat name, a transient notice and the
// signed-in user, on a gradient background.
//
// Footer: Context-aware keyboard shortcuts, replaced by a flash message when
// one is showing.
//
// Sidebar: The chat list with personal and group tabs, unread badges and a
// name filter.
//
// Chat: The open chat's transcript in a viewport plus a textarea for input.
// Supports a browse mode with a message cursor, mouse selection with copy, and
// double-click to request the delete popup.
//
// AdminPanel: Statistics and the user, chat and message tables.
//
// Modal: Container for the dialogs in the modals package.
//
// # Text Selection Coordinate System
//
// Mouse events arrive in terminal coordinates. The app subtracts the chat
// panel's origin before forwarding them, and Chat subtracts one more cell on
// each axis for the panel border. Selection coordinates are therefore relative
// to the viewport's visible area, which is also what the ultraviolet screen
// buffer in selectionView uses. Escape codes are stripped before text is
// extracted so columns line up with what is on screen.
//
// # Theming
//
// Styles are package variables regenerated from the active Theme by SetTheme.
// Custom themes are YAML files loaded with LoadCustomThemes.
package ui
