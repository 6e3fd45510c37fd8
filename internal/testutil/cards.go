package testutil

import "encoding/json"

// Raw catalog objects, one per layout the normalizer knows about.
var (
	LightningBolt = json.RawMessage(`{
		"object": "card",
		"id": "e3285e6b-3e79-4d7c-bf96-d920f973b80d",
		"name": "Lightning Bolt",
		"layout": "normal",
		"cmc": 1.0,
		"type_line": "Instant",
		"oracle_text": "Lightning Bolt deals 3 damage to any target.",
		"mana_cost": "{R}",
		"colors": ["R"],
		"color_identity": ["R"],
		"legalities": {"modern": "legal", "standard": "not_legal", "legacy": "legal", "vintage": "restricted"},
		"set": "m10",
		"set_name": "Magic 2010",
		"collector_number": "146"
	}`)

	Counterspell = json.RawMessage(`{
		"object": "card",
		"id": "1920dae4-fb92-4f19-ae4b-eb3276b8dac7",
		"name": "Counterspell",
		"layout": "normal",
		"cmc": 2.0,
		"type_line": "Instant",
		"oracle_text": "Counter target spell.",
		"mana_cost": "{U}{U}",
		"colors": ["U"],
		"color_identity": ["U"],
		"legalities": {"modern": "legal", "legacy": "legal", "pauper": "legal"},
		"set": "mh2",
		"set_name": "Modern Horizons 2",
		"collector_number": "267"
	}`)

	Tarmogoyf = json.RawMessage(`{
		"object": "card",
		"id": "69daba76-96e8-4bcc-ab79-2f00189ad8fb",
		"name": "Tarmogoyf",
		"layout": "normal",
		"cmc": 2.0,
		"type_line": "Creature — Lhurgoyf",
		"oracle_text": "Tarmogoyf's power is equal to the number of card types among cards in all graveyards and its toughness is equal to that number plus 1.",
		"mana_cost": "{1}{G}",
		"power": "*",
		"toughness": "1+*",
		"colors": ["G"],
		"color_identity": ["G"],
		"legalities": {"modern": "legal", "legacy": "legal"},
		"set": "fut",
		"set_name": "Future Sight",
		"collector_number": "153"
	}`)

	JoragaTreespeaker = json.RawMessage(`{
		"object": "card",
		"id": "d3e1c4d1-4a4f-4c58-b1b4-3a7a0cd0e0c2",
		"name": "Joraga Treespeaker",
		"layout": "leveler",
		"cmc": 1.0,
		"type_line": "Creature — Elf Druid",
		"oracle_text": "Level up {1}{G}",
		"mana_cost": "{G}",
		"power": "1",
		"toughness": "1",
		"colors": ["G"],
		"color_identity": ["G"],
		"legalities": {"modern": "legal"},
		"set": "roe",
		"set_name": "Rise of the Eldrazi",
		"collector_number": "190"
	}`)

	FireIce = json.RawMessage(`{
		"object": "card",
		"id": "2a0a9d6f-0a8c-4e8c-9c39-6f4bd6e0d5a1",
		"name": "Fire // Ice",
		"layout": "split",
		"cmc": 4.0,
		"type_line": "Instant // Instant",
		"mana_cost": "{1}{R} // {1}{U}",
		"colors": ["R", "U"],
		"color_identity": ["R", "U"],
		"legalities": {"modern": "legal", "legacy": "legal"},
		"set": "mh2",
		"set_name": "Modern Horizons 2",
		"collector_number": "290",
		"card_faces": [
			{"name": "Fire", "mana_cost": "{1}{R}", "type_line": "Instant", "oracle_text": "Fire deals 2 damage divided as you choose among one or two targets."},
			{"name": "Ice", "mana_cost": "{1}{U}", "type_line": "Instant", "oracle_text": "Tap target permanent.\nDraw a card."}
		]
	}`)

	BushiTenderfoot = json.RawMessage(`{
		"object": "card",
		"id": "7e3b0e4f-5b0c-4f59-9e4c-2e8c3a3c6b11",
		"name": "Bushi Tenderfoot // Kenzo the Hardhearted",
		"layout": "flip",
		"cmc": 1.0,
		"type_line": "Creature — Human Soldier // Legendary Creature — Human Samurai",
		"mana_cost": "{W}",
		"colors": ["W"],
		"color_identity": ["W"],
		"legalities": {"modern": "legal"},
		"set": "chk",
		"set_name": "Champions of Kamigawa",
		"collector_number": "2",
		"card_faces": [
			{"name": "Bushi Tenderfoot", "mana_cost": "{W}", "type_line": "Creature — Human Soldier", "oracle_text": "When a creature dealt damage by Bushi Tenderfoot this turn dies, flip Bushi Tenderfoot.", "power": "1", "toughness": "1"},
			{"name": "Kenzo the Hardhearted", "mana_cost": "", "type_line": "Legendary Creature — Human Samurai", "oracle_text": "Double strike; bushido 2", "power": "3", "toughness": "4"}
		]
	}`)

	DelverOfSecrets = json.RawMessage(`{
		"object": "card",
		"id": "11bf83bb-c95b-4b4f-9a56-ce7a1816307a",
		"name": "Delver of Secrets // Insectile Aberration",
		"layout": "transform",
		"cmc": 1.0,
		"type_line": "Creature — Human Wizard // Creature — Human Insect",
		"mana_cost": "{U}",
		"color_identity": ["U"],
		"legalities": {"modern": "legal", "legacy": "legal", "pauper": "legal"},
		"set": "isd",
		"set_name": "Innistrad",
		"collector_number": "51",
		"card_faces": [
			{"name": "Delver of Secrets", "mana_cost": "{U}", "type_line": "Creature — Human Wizard", "oracle_text": "At the beginning of your upkeep, look at the top card of your library. You may reveal that card. If an instant or sorcery card is revealed this way, transform Delver of Secrets.", "power": "1", "toughness": "1", "colors": ["U"]},
			{"name": "Insectile Aberration", "mana_cost": "", "type_line": "Creature — Human Insect", "power": "3", "toughness": "2", "colors": ["U"]}
		]
	}`)

	BriselaVoiceOfNightmares = json.RawMessage(`{
		"object": "card",
		"id": "5a7a212e-e0b6-4f12-a95c-173cae023f93",
		"name": "Brisela, Voice of Nightmares",
		"layout": "meld",
		"cmc": 11.0,
		"type_line": "Legendary Creature — Eldrazi Angel",
		"oracle_text": "Flying, first strike, vigilance, lifelink\nYour opponents can't cast spells with mana value 3 or less.",
		"mana_cost": "",
		"power": "9",
		"toughness": "10",
		"colors": ["W"],
		"color_identity": ["W"],
		"legalities": {"modern": "legal"},
		"set": "emn",
		"set_name": "Eldritch Moon",
		"collector_number": "15b"
	}`)

	// Token layouts are outside of what the catalog stores.
	GoblinToken = json.RawMessage(`{
		"object": "card",
		"id": "0c1d2e3f-0000-4000-8000-000000000001",
		"name": "Goblin",
		"layout": "token",
		"cmc": 0.0,
		"type_line": "Token Creature — Goblin",
		"mana_cost": "",
		"power": "1",
		"toughness": "1",
		"colors": ["R"],
		"color_identity": ["R"],
		"legalities": {},
		"set": "tm10",
		"set_name": "Magic 2010 Tokens",
		"collector_number": "5"
	}`)
)
