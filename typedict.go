package ddsave

import "sync"

// typeRule is one entry of the save format's hardcoded type dictionary: a
// field named path[len(path)-1] has kind Kind whenever its ancestor chain's
// tail matches path[:len(path)-1], read outermost-to-innermost, with "*"
// matching any single ancestor name.
type typeRule struct {
	kind Kind
	path []string
}

// typeRules is the save format's exhaustive list of fields whose type
// cannot be inferred from their binary layout alone (Bool/Char/TwoBool all
// share a 1- or 8-byte encoding indistinguishable from Int/TwoInt without
// this table). Ported verbatim from the reference implementation's dictionary.
var typeRules = []typeRule{
	{KindChar, []string{"requirement_code"}},

	{KindFloat, []string{"current_hp"}},
	{KindFloat, []string{"m_Stress"}},
	{KindFloat, []string{"actor", "buff_group", "*", "amount"}},
	{KindFloat, []string{"chapters", "*", "*", "percent"}},
	{KindFloat, []string{"non_rolled_additional_chances", "*", "chance"}},
	{KindFloat, []string{"rarity_table", "*", "chance"}},
	{KindFloat, []string{"chance_of_loot"}},
	{KindFloat, []string{"shard_consume_percent"}},
	{KindFloat, []string{"chances", "*"}},
	{KindFloat, []string{"chance_sum"}},

	{KindIntVector, []string{"read_page_indexes"}},
	{KindIntVector, []string{"raid_read_page_indexes"}},
	{KindIntVector, []string{"raid_unread_page_indexes"}},
	{KindIntVector, []string{"dungeons_unlocked"}},
	{KindIntVector, []string{"played_video_list"}},
	{KindIntVector, []string{"trinket_retention_ids"}},
	{KindIntVector, []string{"last_party_guids"}},
	{KindIntVector, []string{"dungeon_history"}},
	{KindIntVector, []string{"buff_group_guids"}},
	{KindIntVector, []string{"result_event_history"}},
	{KindIntVector, []string{"dead_hero_entries"}},
	{KindIntVector, []string{"additional_mash_disabled_infestation_monster_class_ids"}},
	{KindIntVector, []string{"mash", "valid_additional_mash_entry_indexes"}},
	{KindIntVector, []string{"party", "heroes"}},
	{KindIntVector, []string{"skill_cooldown_keys"}},
	{KindIntVector, []string{"skill_cooldown_values"}},
	{KindIntVector, []string{"bufferedSpawningSlotsAvailable"}},
	{KindIntVector, []string{"curioGroups", "*", "curios"}},
	{KindIntVector, []string{"curioGroups", "*", "curio_table_entries"}},
	{KindIntVector, []string{"raid_finish_quirk_monster_class_ids"}},
	{KindIntVector, []string{"narration_audio_event_queue_tags"}},
	{KindIntVector, []string{"dispatched_events"}},
	{KindIntVector, []string{"backer_heroes", "*", "combat_skills"}},
	{KindIntVector, []string{"backer_heroes", "*", "camping_skills"}},
	{KindIntVector, []string{"backer_heroes", "*", "quirks"}},

	{KindStringVector, []string{"goal_ids"}},
	{KindStringVector, []string{"roaming_dungeon_2_ids", "*", "s"}},
	{KindStringVector, []string{"quirk_group"}},
	{KindStringVector, []string{"backgroundNames"}},
	{KindStringVector, []string{"backgroundGroups", "*", "backgrounds"}},
	{KindStringVector, []string{"backgroundGroups", "*", "background_table_entries"}},

	{KindFloatArray, []string{"map", "bounds"}},
	{KindFloatArray, []string{"areas", "*", "bounds"}},
	{KindFloatArray, []string{"areas", "*", "tiles", "*", "mappos"}},
	{KindFloatArray, []string{"areas", "*", "tiles", "*", "sidepos"}},

	{KindTwoInt, []string{"killRange"}},

	{KindTwoBool, []string{"profile_options", "values", "quest_select_warnings"}},
	{KindTwoBool, []string{"profile_options", "values", "provision_warnings"}},
	{KindTwoBool, []string{"profile_options", "values", "deck_based_stage_coach"}},
	{KindTwoBool, []string{"profile_options", "values", "curio_tracker"}},
	{KindTwoBool, []string{"profile_options", "values", "dd_mode"}},
	{KindTwoBool, []string{"profile_options", "values", "corpses"}},
	{KindTwoBool, []string{"profile_options", "values", "stall_penalty"}},
	{KindTwoBool, []string{"profile_options", "values", "deaths_door_recovery_debuffs"}},
	{KindTwoBool, []string{"profile_options", "values", "retreats_can_fail"}},
	{KindTwoBool, []string{"profile_options", "values", "multiplied_enemy_crits"}},
}

var (
	typeDictOnce sync.Once
	typeDictByLeaf map[string][]typeRule
)

// buildTypeDict indexes typeRules by their field's own (leaf) name, so a
// lookup only ever scans the handful of rules sharing that name instead of
// the whole table.
func buildTypeDict() {
	typeDictByLeaf = make(map[string][]typeRule, len(typeRules))
	for _, r := range typeRules {
		leaf := r.path[len(r.path)-1]
		typeDictByLeaf[leaf] = append(typeDictByLeaf[leaf], r)
	}
}

// hardcodedType looks up name's type by the save format's dictionary,
// given its ancestor chain (outermost first, NOT including name itself).
// A rule matches when its ancestor pattern's tail lines up against
// parents' tail, comparing from the innermost ancestor outward, where "*"
// matches any ancestor name. Returns ok=false when no rule applies, in
// which case the caller falls back to the binary/JSON layout heuristic.
func hardcodedType(parents []string, name string) (Kind, bool) {
	typeDictOnce.Do(buildTypeDict)

	candidates, ok := typeDictByLeaf[name]
	if !ok {
		return 0, false
	}

	for _, r := range candidates {
		ancestors := r.path[:len(r.path)-1]
		if len(parents) < len(ancestors) {
			continue
		}
		matched := true
		for i := 0; i < len(ancestors); i++ {
			want := ancestors[len(ancestors)-1-i]
			got := parents[len(parents)-1-i]
			if want != "*" && want != got {
				matched = false
				break
			}
		}
		if matched {
			return r.kind, true
		}
	}
	return 0, false
}
